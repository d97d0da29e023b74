package plan

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// IdentityStrategy selects how plan ids are minted.
type IdentityStrategy string

const (
	// IdentityRandom mints random ids
	IdentityRandom IdentityStrategy = "random"
	// IdentityContentHash derives ids from (path, name, sequence)
	IdentityContentHash IdentityStrategy = "content-hash"
)

// idLength is the number of hex characters in a plan id.
const idLength = 32

// Identity is the identity rule of a plan. Path and Name are only meaningful
// for IdentityContentHash. Sequence salts the hash; 0 means unsalted.
type Identity struct {
	Strategy IdentityStrategy `yaml:"strategy" json:"strategy"`
	Path     string           `yaml:"path,omitempty" json:"path,omitempty"`
	Name     string           `yaml:"name,omitempty" json:"name,omitempty"`
	Sequence int              `yaml:"sequence,omitempty" json:"sequence,omitempty"`
}

// RandomIdentity returns the identity of an ad-hoc plan.
func RandomIdentity() Identity {
	return Identity{Strategy: IdentityRandom}
}

// ContentHashIdentity returns the identity of a plan declared at path under name.
func ContentHashIdentity(path, name string) Identity {
	return Identity{Strategy: IdentityContentHash, Path: path, Name: name}
}

// WithSequence returns a copy of the identity salted with sequence.
func (i Identity) WithSequence(sequence int) Identity {
	i.Sequence = sequence
	return i
}

// NewID mints an id according to the identity rule.
func (i Identity) NewID() string {
	if i.Strategy == IdentityContentHash {
		return ContentHashID(i.Path, i.Name, i.Sequence)
	}
	return RandomID()
}

// ContentHashID returns the first 32 hex characters of
// sha256(path + "::" + name [+ "::" + sequence]).
func ContentHashID(path, name string, sequence int) string {
	key := path + "::" + name
	if sequence > 0 {
		key += "::" + strconv.Itoa(sequence)
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:idLength]
}

// RandomID returns a random 32 hex character id.
func RandomID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
