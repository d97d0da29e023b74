// Package cmdline parses the single-line shell commands of workflow steps
// into an immutable, typed syntax tree.
//
// Only a small subset of the shell grammar is accepted: one simple command
// made of words, `$name` references, tilde words and the redirections `<`,
// `>`, `>>` and `2>`. Quoting works as in a POSIX shell: single quotes are
// literal, double quotes allow `$name` references and backslash escapes, and
// an unquoted backslash escapes the next character. `$$` stands for a literal
// dollar sign.
//
// Everything else is rejected with an *api.ParseError carrying the offending
// token and its offset:
//
//   - multi-command constructs: `|`, `||`, `;`, `&&`, `&`, newlines
//   - command substitution `$(...)` and backticks, subshells `(...)`
//   - here-documents `<<`, `&>` and file-descriptor duplication such as `2>&1`
//   - unterminated quotes and redirections without a target
//
// The parser never mutates the tree after building it; binding the nodes to
// declared arguments happens elsewhere and refers to nodes by index.
package cmdline
