package classifier

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/giantswarm/lineage/internal/api"
	"github.com/giantswarm/lineage/internal/plan"
	"github.com/giantswarm/lineage/pkg/logging"

	"github.com/google/shlex"
)

// Kind tells whether an argument is a path or an opaque value.
type Kind string

const (
	KindParameter Kind = "parameter"
	KindPath      Kind = "path"
)

// Argument is one classified command-line argument.
type Argument struct {
	Kind      Kind           `json:"kind" yaml:"kind"`
	Value     string         `json:"value" yaml:"value"`
	Prefix    string         `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Position  int            `json:"position" yaml:"position"`
	MappedTo  plan.Stream    `json:"mappedTo,omitempty" yaml:"mappedTo,omitempty"`
	IsDir     bool           `json:"isDir,omitempty" yaml:"isDir,omitempty"`
	IsOutput  bool           `json:"isOutput,omitempty" yaml:"isOutput,omitempty"`
	ValueType plan.ValueType `json:"valueType,omitempty" yaml:"valueType,omitempty"`
}

// Result is the classification of one command line.
type Result struct {
	BaseCommand []string   `json:"baseCommand" yaml:"baseCommand"`
	Arguments   []Argument `json:"arguments" yaml:"arguments"`
}

// Options tune the classification.
type Options struct {
	// ExplicitParameters are values that stay parameters even when they
	// name an existing path.
	ExplicitParameters []string
}

var subcommandPattern = regexp.MustCompile(`^[A-Za-z]+(-[A-Za-z]+)?$`)

var redirectOperators = []struct {
	op     string
	stream plan.Stream
}{
	// longest first so that ">>" is not read as ">" + ">target"
	{">>", plan.StreamStdout},
	{"2>", plan.StreamStderr},
	{">", plan.StreamStdout},
	{"<", plan.StreamStdin},
}

// Split tokenises a raw command line with POSIX shell quoting rules.
func Split(line string) ([]string, error) {
	tokens, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("failed to split command line: %w", err)
	}
	return tokens, nil
}

// Classify classifies tokens, the argv of an executed command.
func Classify(tokens []string, checker api.PathChecker, opts Options) Result {
	if len(tokens) == 0 {
		return Result{}
	}

	s := &scanner{
		checker:  checker,
		explicit: make(map[string]bool, len(opts.ExplicitParameters)),
	}
	for _, p := range opts.ExplicitParameters {
		s.explicit[p] = true
	}

	s.result.BaseCommand = []string{tokens[0]}
	rest := tokens[1:]
	if len(rest) >= 2 {
		for len(rest) > 0 && s.isSubcommand(rest[0]) {
			s.result.BaseCommand = append(s.result.BaseCommand, rest[0])
			rest = rest[1:]
		}
	}

	for _, tok := range rest {
		s.scan(tok)
	}
	s.flushFlag()
	if s.redirect != plan.StreamNone {
		logging.Debug("Classifier", "Dangling redirection at end of %q", strings.Join(tokens, " "))
	}

	return s.result
}

type scanner struct {
	checker  api.PathChecker
	explicit map[string]bool
	result   Result

	// pendingFlag is a flag still waiting for its value
	pendingFlag string
	// redirect is the stream the next token is redirected to
	redirect plan.Stream
}

func (s *scanner) isSubcommand(tok string) bool {
	if !subcommandPattern.MatchString(tok) || s.explicit[tok] {
		return false
	}
	_, exists := s.stat(tok)
	return !exists
}

func (s *scanner) scan(tok string) {
	if s.redirect != plan.StreamNone {
		stream := s.redirect
		s.redirect = plan.StreamNone
		s.addRedirectTarget(tok, stream)
		return
	}

	if stream, target, ok := splitRedirect(tok); ok {
		s.flushFlag()
		if target == "" {
			s.redirect = stream
			return
		}
		s.addRedirectTarget(target, stream)
		return
	}

	if isFlag(tok) {
		s.flushFlag()
		s.scanFlag(tok)
		return
	}

	if s.pendingFlag != "" {
		prefix := s.pendingFlag + " "
		s.pendingFlag = ""
		s.addValue(prefix, tok)
		return
	}

	s.addValue("", tok)
}

func (s *scanner) scanFlag(tok string) {
	if idx := strings.Index(tok, "="); idx > 0 {
		s.addValue(tok[:idx+1], tok[idx+1:])
		return
	}

	long := strings.HasPrefix(tok, "--")
	if !long && len(tok) > 2 {
		// short flag with attached value, e.g. -i42
		s.addValue(tok[:2], tok[2:])
		return
	}

	s.pendingFlag = tok
}

// flushFlag emits a flag that never received a value as an opaque parameter.
func (s *scanner) flushFlag() {
	if s.pendingFlag == "" {
		return
	}
	flag := s.pendingFlag
	s.pendingFlag = ""
	s.add(Argument{Kind: KindParameter, Value: flag, ValueType: plan.ValueString})
}

func (s *scanner) addValue(prefix, value string) {
	if !s.explicit[value] {
		if info, ok := s.stat(value); ok {
			s.add(Argument{Kind: KindPath, Value: value, Prefix: prefix, IsDir: info.IsDir})
			return
		}
	}
	s.add(Argument{Kind: KindParameter, Value: value, Prefix: prefix, ValueType: plan.GuessValueType(value)})
}

func (s *scanner) addRedirectTarget(target string, stream plan.Stream) {
	info, _ := s.stat(target)
	s.add(Argument{
		Kind:     KindPath,
		Value:    target,
		MappedTo: stream,
		IsDir:    info.IsDir,
		IsOutput: stream != plan.StreamStdin,
	})
}

func (s *scanner) add(arg Argument) {
	arg.Position = len(s.result.Arguments) + 1
	s.result.Arguments = append(s.result.Arguments, arg)
}

func (s *scanner) stat(candidate string) (api.PathInfo, bool) {
	if s.checker == nil || candidate == "" {
		return api.PathInfo{}, false
	}
	return s.checker.Stat(candidate)
}

func splitRedirect(tok string) (plan.Stream, string, bool) {
	for _, r := range redirectOperators {
		if strings.HasPrefix(tok, r.op) {
			target := tok[len(r.op):]
			if strings.HasPrefix(target, "&") || strings.HasPrefix(target, ">") {
				// fd duplication and unknown operators are ordinary tokens
				return plan.StreamNone, "", false
			}
			return r.stream, target, true
		}
	}
	return plan.StreamNone, "", false
}

// isFlag reports whether tok looks like an option rather than a value.
// Negative numbers and a lone dash are values.
func isFlag(tok string) bool {
	if len(tok) < 2 || tok[0] != '-' {
		return false
	}
	if tok == "--" {
		return false
	}
	return plan.GuessValueType(tok) != plan.ValueInt && plan.GuessValueType(tok) != plan.ValueFloat
}
