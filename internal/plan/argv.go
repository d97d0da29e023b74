package plan

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
)

// Redirections are the stream mappings of a rendered command.
type Redirections struct {
	Stdin  string `json:"stdin,omitempty" yaml:"stdin,omitempty"`
	Stdout string `json:"stdout,omitempty" yaml:"stdout,omitempty"`
	Stderr string `json:"stderr,omitempty" yaml:"stderr,omitempty"`
}

// ToArgv rebuilds the argv of the plan: the base command split with shell
// rules, followed by every positioned argument in position order. A prefix
// ending in a space yields two tokens (`-n `, `10`); any other prefix is glued
// to the value (`--out=`, `x`). Stream-mapped arguments are returned as
// redirections instead of argv tokens.
func (p *Plan) ToArgv() ([]string, Redirections, error) {
	var redirects Redirections

	argv, err := shlex.Split(p.Command)
	if err != nil {
		return nil, redirects, fmt.Errorf("failed to split command of plan %s: %w", p.Name, err)
	}

	for _, arg := range p.Positionals() {
		switch arg.MappedTo {
		case StreamStdin:
			redirects.Stdin = arg.Value
			continue
		case StreamStdout:
			redirects.Stdout = arg.Value
			continue
		case StreamStderr:
			redirects.Stderr = arg.Value
			continue
		}
		argv = append(argv, SplitPrefixed(arg.Prefix, arg.Value)...)
	}

	return argv, redirects, nil
}

// SplitPrefixed renders a prefixed value as argv tokens.
func SplitPrefixed(prefix, value string) []string {
	switch {
	case prefix == "":
		return []string{value}
	case strings.HasSuffix(prefix, " "):
		return []string{strings.TrimRight(prefix, " "), value}
	default:
		return []string{prefix + value}
	}
}

// CommandLine renders the plan as a single shell command line, quoting
// tokens where needed and appending redirections.
func (p *Plan) CommandLine() (string, error) {
	argv, redirects, err := p.ToArgv()
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(argv)+3)
	for _, tok := range argv {
		parts = append(parts, ShellQuote(tok))
	}
	if redirects.Stdin != "" {
		parts = append(parts, "<", ShellQuote(redirects.Stdin))
	}
	if redirects.Stdout != "" {
		parts = append(parts, ">", ShellQuote(redirects.Stdout))
	}
	if redirects.Stderr != "" {
		parts = append(parts, "2>", ShellQuote(redirects.Stderr))
	}
	return strings.Join(parts, " "), nil
}

// ShellQuote quotes s for a POSIX shell when it contains anything besides
// safe characters.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !isShellSafe(r) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

func isShellSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("@%+=:,./-_", r)
}
