package keyvalue

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Node is one entry of a parsed KeyValue document. A node carries either a
// scalar Value or an ordered list of Children; the zero Node doubles as the
// "missing" sentinel returned by failed lookups.
type Node struct {
	// Name is the entry's key as written in the document.
	Name string

	// Value is the scalar value for leaf entries, empty for blocks.
	Value string

	// Children holds the block's entries in document order, nil for leaves.
	Children []*Node
}

// sentinel returned for missing children so lookup chains never nil-deref.
var emptyNode = &Node{}

// Empty reports whether the node is the missing sentinel or otherwise
// carries no data.
func (n *Node) Empty() bool {
	return n == nil || (n.Name == "" && n.Value == "" && len(n.Children) == 0)
}

// Child returns the first child whose name matches (case-insensitive), or
// the empty sentinel when there is no such child.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return emptyNode
	}
	for _, c := range n.Children {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return emptyNode
}

// String returns the node's scalar value, or def when the node is empty or
// has no scalar.
func (n *Node) String(def string) string {
	if n.Empty() || n.Value == "" {
		return def
	}
	return n.Value
}

// Int returns the node's scalar parsed as an int64, or def when absent or
// unparsable.
func (n *Node) Int(def int64) int64 {
	if n.Empty() {
		return def
	}
	v, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return def
	}
	return v
}

// Uint64 returns the node's scalar parsed as a uint64, or def when absent
// or unparsable.
func (n *Node) Uint64(def uint64) uint64 {
	if n.Empty() {
		return def
	}
	v, err := strconv.ParseUint(n.Value, 10, 64)
	if err != nil {
		return def
	}
	return v
}

// ParseFile parses the KeyValue document at path. The file is opened for
// plain shared reading; no exclusive lock is taken, so a file concurrently
// written by Steam stays readable (and a torn read surfaces as a parse
// error from Parse).
func ParseFile(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a KeyValue document and returns its document node: an
// unnamed node whose children are the top-level entries. Content following
// the final top-level block is ignored.
func Parse(r io.Reader) (*Node, error) {
	p := &parser{sc: bufio.NewScanner(r)}
	p.sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	root := &Node{}
	if err := p.parseBlock(root, true); err != nil {
		return nil, err
	}
	if err := p.sc.Err(); err != nil {
		return nil, fmt.Errorf("read keyvalue stream: %w", err)
	}
	return root, nil
}

type parser struct {
	sc   *bufio.Scanner
	line int

	// pending holds tokens left over from the current line.
	pending []token
}

type token struct {
	text  string
	brace byte // '{', '}' or 0 for a string token
}

// parseBlock consumes entries into dst until a closing brace (or EOF when
// top is set).
func (p *parser) parseBlock(dst *Node, top bool) error {
	for {
		tok, ok := p.next()
		if !ok {
			if top {
				return nil
			}
			return fmt.Errorf("line %d: unexpected end of input inside block %q", p.line, dst.Name)
		}
		switch tok.brace {
		case '}':
			if top {
				// Stray closer at top level; treat as end of document.
				return nil
			}
			return nil
		case '{':
			return fmt.Errorf("line %d: unexpected '{' without a key", p.line)
		}

		child := &Node{Name: tok.text}
		dst.Children = append(dst.Children, child)

		val, ok := p.next()
		if !ok {
			if top {
				// Truncated trailing key from a concurrent writer.
				return nil
			}
			return fmt.Errorf("line %d: key %q has no value or block", p.line, tok.text)
		}
		switch val.brace {
		case '{':
			if err := p.parseBlock(child, false); err != nil {
				return err
			}
		case '}':
			return fmt.Errorf("line %d: key %q has no value before '}'", p.line, tok.text)
		default:
			child.Value = val.text
		}
	}
}

// next returns the next token, pulling lines through the scanner as needed.
func (p *parser) next() (token, bool) {
	for len(p.pending) == 0 {
		if !p.sc.Scan() {
			return token{}, false
		}
		p.line++
		p.pending = tokenize(p.sc.Text())
	}
	tok := p.pending[0]
	p.pending = p.pending[1:]
	return tok, true
}

// tokenize splits one line into string and brace tokens. Comments run to
// end of line; quoted strings honor backslash escapes.
func tokenize(line string) []token {
	var toks []token
	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			return toks
		case c == '{' || c == '}':
			toks = append(toks, token{brace: c})
			i++
		case c == '"':
			s, n := scanQuoted(line[i:])
			toks = append(toks, token{text: s})
			i += n
		default:
			start := i
			for i < len(line) && !strings.ContainsRune(" \t\r\"{}", rune(line[i])) {
				i++
			}
			toks = append(toks, token{text: line[start:i]})
		}
	}
	return toks
}

// scanQuoted consumes a quoted string starting at s[0] == '"' and returns
// the unescaped content plus the number of bytes consumed. An unterminated
// string (torn tail) consumes the rest of the line.
func scanQuoted(s string) (string, int) {
	var b strings.Builder
	i := 1
	for i < len(s) {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '"', '\\':
				b.WriteByte(s[i+1])
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(c)
				b.WriteByte(s[i+1])
			}
			i += 2
			continue
		}
		if c == '"' {
			return b.String(), i + 1
		}
		b.WriteByte(c)
		i++
	}
	return b.String(), i
}
