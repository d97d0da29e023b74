package plan

import (
	"fmt"
	"sort"
	"strconv"
)

// Stream names a standard stream an argument can be mapped to.
type Stream string

const (
	StreamNone   Stream = ""
	StreamStdin  Stream = "stdin"
	StreamStdout Stream = "stdout"
	StreamStderr Stream = "stderr"
)

// ParseStream converts a mapped_to value into a Stream.
func ParseStream(s string) (Stream, error) {
	switch Stream(s) {
	case StreamNone, StreamStdin, StreamStdout, StreamStderr:
		return Stream(s), nil
	default:
		return StreamNone, fmt.Errorf("invalid stream %q: must be one of stdin, stdout, stderr", s)
	}
}

// ValueType is the guessed type of a parameter value.
type ValueType string

const (
	ValueString ValueType = "string"
	ValueInt    ValueType = "int"
	ValueFloat  ValueType = "float"
	ValueBool   ValueType = "bool"
)

// GuessValueType infers the type of a literal command-line value.
func GuessValueType(value string) ValueType {
	if _, err := strconv.ParseInt(value, 10, 64); err == nil {
		return ValueInt
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return ValueFloat
	}
	if value == "true" || value == "false" {
		return ValueBool
	}
	return ValueString
}

// ArgumentKind distinguishes the three argument lists of a plan.
type ArgumentKind string

const (
	KindInput     ArgumentKind = "input"
	KindOutput    ArgumentKind = "output"
	KindParameter ArgumentKind = "parameter"
)

// Argument holds the fields shared by inputs, outputs and parameters.
type Argument struct {
	Name        string `yaml:"name,omitempty" json:"name,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Position is 1-based; 0 means the argument is not bound to the command line
	Position int    `yaml:"position,omitempty" json:"position,omitempty"`
	Prefix   string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	// Implicit arguments are not reported when unmatched
	Implicit bool `yaml:"implicit,omitempty" json:"implicit,omitempty"`
}

// Parameter is an opaque value argument.
type Parameter struct {
	Argument  `yaml:",inline"`
	Value     string    `yaml:"value" json:"value"`
	ValueType ValueType `yaml:"valueType,omitempty" json:"valueType,omitempty"`
}

// Input is a path the command reads.
type Input struct {
	Argument `yaml:",inline"`
	Path     string `yaml:"path" json:"path"`
	MappedTo Stream `yaml:"mappedTo,omitempty" json:"mappedTo,omitempty"`
}

// Output is a path the command writes.
type Output struct {
	Argument     `yaml:",inline"`
	Path         string `yaml:"path" json:"path"`
	MappedTo     Stream `yaml:"mappedTo,omitempty" json:"mappedTo,omitempty"`
	Persist      bool   `yaml:"persist,omitempty" json:"persist,omitempty"`
	CreateFolder bool   `yaml:"createFolder,omitempty" json:"createFolder,omitempty"`
}

// Arguments groups the argument lists of a plan in declaration order.
type Arguments struct {
	Inputs     []Input     `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	Outputs    []Output    `yaml:"outputs,omitempty" json:"outputs,omitempty"`
	Parameters []Parameter `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

// Positional is one bound argument rendered for the command line.
type Positional struct {
	Kind     ArgumentKind
	Name     string
	Position int
	Prefix   string
	Value    string
	MappedTo Stream
}

// Positionals returns every argument that has a position, ordered by position.
// Arguments sharing a position keep declaration order with parameters first.
func (a Arguments) Positionals() []Positional {
	var res []Positional
	for _, p := range a.Parameters {
		if p.Position > 0 {
			res = append(res, Positional{Kind: KindParameter, Name: p.Name, Position: p.Position, Prefix: p.Prefix, Value: p.Value})
		}
	}
	for _, in := range a.Inputs {
		if in.Position > 0 {
			res = append(res, Positional{Kind: KindInput, Name: in.Name, Position: in.Position, Prefix: in.Prefix, Value: in.Path, MappedTo: in.MappedTo})
		}
	}
	for _, out := range a.Outputs {
		if out.Position > 0 {
			res = append(res, Positional{Kind: KindOutput, Name: out.Name, Position: out.Position, Prefix: out.Prefix, Value: out.Path, MappedTo: out.MappedTo})
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].Position < res[j].Position })
	return res
}

// Clone returns a deep copy.
func (a Arguments) Clone() Arguments {
	return Arguments{
		Inputs:     append([]Input(nil), a.Inputs...),
		Outputs:    append([]Output(nil), a.Outputs...),
		Parameters: append([]Parameter(nil), a.Parameters...),
	}
}

// Names returns the names of all arguments in declaration order
// (inputs, outputs, parameters).
func (a Arguments) Names() []string {
	var names []string
	for _, in := range a.Inputs {
		names = append(names, in.Name)
	}
	for _, out := range a.Outputs {
		names = append(names, out.Name)
	}
	for _, p := range a.Parameters {
		names = append(names, p.Name)
	}
	return names
}
