package cmdline

import (
	"fmt"
	"strings"

	"github.com/giantswarm/lineage/internal/api"
)

// Parse parses a single-line command.
func Parse(command string) (*Command, error) {
	p := &parser{src: command}
	nodes, err := p.parseCommand()
	if err != nil {
		return nil, err
	}
	return &Command{source: command, nodes: nodes}, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) peekAt(offset int) byte {
	if p.pos+offset >= len(p.src) {
		return 0
	}
	return p.src[p.pos+offset]
}

func (p *parser) hasPrefix(s string) bool {
	return strings.HasPrefix(p.src[p.pos:], s)
}

func (p *parser) errorf(offset int, token, format string, args ...interface{}) error {
	return &api.ParseError{
		Attribute: "command",
		Token:     token,
		Position:  offset + 1,
		Message:   fmt.Sprintf(format, args...),
	}
}

func isBlank(c byte) bool { return c == ' ' || c == '\t' }

// isMeta reports whether c ends an unquoted word.
func isMeta(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '|', ';', '&', '(', ')', '<', '>':
		return true
	}
	return false
}

func (p *parser) skipBlanks() {
	for !p.eof() && isBlank(p.peek()) {
		p.pos++
	}
}

// parseCommand: element*
func (p *parser) parseCommand() ([]Node, error) {
	var nodes []Node
	hasWord := false

	for {
		p.skipBlanks()
		if p.eof() {
			break
		}
		node, err := p.parseElement()
		if err != nil {
			return nil, err
		}
		if node.Kind != NodeRedirect {
			hasWord = true
		}
		nodes = append(nodes, node)
	}

	if !hasWord {
		return nil, p.errorf(0, "", "command is empty")
	}
	return nodes, nil
}

// parseElement: redirect | word
func (p *parser) parseElement() (Node, error) {
	if err := p.checkOperator(); err != nil {
		return Node{}, err
	}
	op, width, err := p.peekRedirect()
	if err != nil {
		return Node{}, err
	}
	if width > 0 {
		return p.parseRedirect(op, width)
	}
	return p.parseWord()
}

// checkOperator rejects control operators at the current position.
func (p *parser) checkOperator() error {
	start := p.pos
	switch c := p.peek(); c {
	case '\n', '\r':
		return p.errorf(start, `\n`, "multi-command constructs are not supported")
	case '|':
		if p.peekAt(1) == '|' {
			return p.errorf(start, "||", "multi-command constructs are not supported")
		}
		return p.errorf(start, "|", "multi-command constructs are not supported")
	case ';':
		return p.errorf(start, ";", "multi-command constructs are not supported")
	case '&':
		switch p.peekAt(1) {
		case '&':
			return p.errorf(start, "&&", "multi-command constructs are not supported")
		case '>':
			return p.errorf(start, "&>", "unsupported redirection")
		}
		return p.errorf(start, "&", "background execution is not supported")
	case '(', ')':
		return p.errorf(start, string(c), "subshells are not supported")
	}
	return nil
}

// peekRedirect recognises a redirection operator and returns its width.
func (p *parser) peekRedirect() (RedirectOp, int, error) {
	start := p.pos
	switch {
	case p.hasPrefix("<<"):
		return "", 0, p.errorf(start, "<<", "here-documents are not supported")
	case p.hasPrefix("<&"), p.hasPrefix("<>"):
		return "", 0, p.errorf(start, p.src[start:start+2], "unsupported redirection")
	case p.hasPrefix("<"):
		return RedirectIn, 1, nil
	case p.hasPrefix(">&"), p.hasPrefix(">|"):
		return "", 0, p.errorf(start, p.src[start:start+2], "unsupported redirection")
	case p.hasPrefix(">>"):
		return RedirectAppend, 2, nil
	case p.hasPrefix(">"):
		return RedirectOut, 1, nil
	case p.hasPrefix("2>&"):
		return "", 0, p.errorf(start, "2>&", "file descriptor duplication is not supported")
	case p.hasPrefix("2>>"):
		return RedirectErr, 3, nil
	case p.hasPrefix("2>"):
		return RedirectErr, 2, nil
	}
	return "", 0, nil
}

// parseRedirect: operator blank* word
func (p *parser) parseRedirect(op RedirectOp, width int) (Node, error) {
	start := p.pos
	p.pos += width
	p.skipBlanks()

	if p.eof() || isMeta(p.peek()) {
		return Node{}, p.errorf(start, string(op), "redirection without a target")
	}
	if _, w, _ := p.peekRedirect(); w > 0 {
		return Node{}, p.errorf(start, string(op), "redirection without a target")
	}

	target, err := p.parseWord()
	if err != nil {
		return Node{}, err
	}
	return Node{
		Kind:   NodeRedirect,
		Op:     op,
		Target: &target,
		Offset: start,
		Raw:    p.src[start:p.pos],
	}, nil
}

// wordBuilder accumulates the parts of one word.
type wordBuilder struct {
	lit    strings.Builder
	ref    string
	hasRef bool
}

func (w *wordBuilder) literal(p *parser, s string) error {
	if w.hasRef {
		return p.errorf(p.pos, s, "text after a reference is not supported")
	}
	w.lit.WriteString(s)
	return nil
}

// parseWord: (unquoted | 'single' | "double" | $ref)+
func (p *parser) parseWord() (Node, error) {
	start := p.pos
	tilde := p.peek() == '~'
	var w wordBuilder

	for !p.eof() {
		c := p.peek()
		if isMeta(c) {
			break
		}

		var err error
		switch c {
		case '\'':
			err = p.parseSingleQuoted(&w)
		case '"':
			err = p.parseDoubleQuoted(&w)
		case '\\':
			err = p.parseEscape(&w)
		case '`':
			err = p.errorf(p.pos, "`", "command substitution is not supported")
		case '$':
			err = p.parseDollar(&w)
		default:
			err = w.literal(p, string(c))
			p.pos++
		}
		if err != nil {
			return Node{}, err
		}
	}

	node := Node{Offset: start, Raw: p.src[start:p.pos], Value: w.lit.String()}
	switch {
	case w.hasRef:
		node.Kind = NodeParameter
		node.Ref = w.ref
	case tilde:
		node.Kind = NodeTilde
	default:
		node.Kind = NodeWord
	}
	return node, nil
}

func (p *parser) parseSingleQuoted(w *wordBuilder) error {
	start := p.pos
	end := strings.IndexByte(p.src[start+1:], '\'')
	if end < 0 {
		return p.errorf(start, "'", "unterminated single quote")
	}
	text := p.src[start+1 : start+1+end]
	p.pos = start + end + 2
	return w.literal(p, text)
}

func (p *parser) parseDoubleQuoted(w *wordBuilder) error {
	start := p.pos
	p.pos++

	for {
		if p.eof() {
			return p.errorf(start, `"`, "unterminated double quote")
		}
		c := p.peek()
		switch c {
		case '"':
			p.pos++
			return nil
		case '\\':
			next := p.peekAt(1)
			if next == '"' || next == '\\' || next == '$' || next == '`' {
				if err := w.literal(p, string(next)); err != nil {
					return err
				}
				p.pos += 2
				continue
			}
			if err := w.literal(p, `\`); err != nil {
				return err
			}
			p.pos++
		case '`':
			return p.errorf(p.pos, "`", "command substitution is not supported")
		case '$':
			if err := p.parseDollar(w); err != nil {
				return err
			}
		default:
			if err := w.literal(p, string(c)); err != nil {
				return err
			}
			p.pos++
		}
	}
}

func (p *parser) parseEscape(w *wordBuilder) error {
	next := p.peekAt(1)
	switch next {
	case 0:
		p.pos++
		return w.literal(p, `\`)
	case '\n':
		return p.errorf(p.pos, `\`, "line continuations are not supported")
	}
	p.pos += 2
	return w.literal(p, string(next))
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9') || c == '-'
}

// parseDollar handles `$$`, `$name`, `${name}` and a bare `$`.
func (p *parser) parseDollar(w *wordBuilder) error {
	start := p.pos
	next := p.peekAt(1)

	switch {
	case next == '$':
		p.pos += 2
		return w.literal(p, "$")
	case next == '(':
		return p.errorf(start, "$(", "command substitution is not supported")
	case next == '{':
		end := strings.IndexByte(p.src[start+2:], '}')
		if end < 0 {
			return p.errorf(start, "${", "unterminated reference")
		}
		name := p.src[start+2 : start+2+end]
		if name == "" || !isNameStart(name[0]) || strings.IndexFunc(name, func(r rune) bool { return r > 127 || !isNameChar(byte(r)) }) >= 0 {
			return p.errorf(start, "${"+name+"}", "invalid reference")
		}
		p.pos = start + end + 3
		return w.reference(p, start, name)
	case isNameStart(next):
		p.pos++
		nameStart := p.pos
		for !p.eof() && isNameChar(p.peek()) {
			p.pos++
		}
		return w.reference(p, start, p.src[nameStart:p.pos])
	default:
		p.pos++
		return w.literal(p, "$")
	}
}

func (w *wordBuilder) reference(p *parser, offset int, name string) error {
	if w.hasRef {
		return p.errorf(offset, "$"+name, "only one reference per word is supported")
	}
	w.ref = name
	w.hasRef = true
	return nil
}
