package phylo

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Node is a node of a rooted tree. Length is the length of the branch
// leading to the node from its parent; it is zero for the root and for
// nodes written without a length.
type Node struct {
	Name     string
	Length   float64
	Children []*Node
	Parent   *Node
}

// IsTip reports whether n has no children.
func (n *Node) IsTip() bool { return len(n.Children) == 0 }

// Tree is a rooted tree.
type Tree struct {
	Root *Node
}

// ErrDuplicateTip is returned when two tips share a name.
var ErrDuplicateTip = errors.New("phylo: duplicate tip name")

// PostOrder calls fn on every node, children before parents.
func (t *Tree) PostOrder(fn func(*Node)) {
	var walk func(*Node)
	walk = func(n *Node) {
		for _, c := range n.Children {
			walk(c)
		}
		fn(n)
	}
	if t.Root != nil {
		walk(t.Root)
	}
}

// Tips returns the tips in post-order.
func (t *Tree) Tips() []*Node {
	var tips []*Node
	t.PostOrder(func(n *Node) {
		if n.IsTip() {
			tips = append(tips, n)
		}
	})
	return tips
}

// TipIndex maps tip names to nodes. It fails if two tips share a name.
func (t *Tree) TipIndex() (map[string]*Node, error) {
	idx := make(map[string]*Node)
	for _, tip := range t.Tips() {
		if _, dup := idx[tip.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTip, tip.Name)
		}
		idx[tip.Name] = tip
	}
	return idx, nil
}

// ReadNewick parses a single Newick tree from r.
func ReadNewick(r io.Reader) (*Tree, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("phylo: reading newick: %w", err)
	}
	return ParseNewickString(string(b))
}

// ParseNewickString parses a single Newick tree terminated by ';'.
// Quoted labels may contain any character; '' inside quotes is a literal
// quote. Bracketed comments are ignored. Underscores are kept as-is.
func ParseNewickString(s string) (*Tree, error) {
	p := &newickParser{src: s}
	root, err := p.parseSubtree(nil)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.consume(';') {
		return nil, p.errorf("expected ';'")
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing input")
	}
	return &Tree{Root: root}, nil
}

type newickParser struct {
	src string
	pos int
}

func (p *newickParser) errorf(format string, args ...any) error {
	return fmt.Errorf("phylo: newick position %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *newickParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *newickParser) consume(c byte) bool {
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

// skipSpace skips whitespace and [comments].
func (p *newickParser) skipSpace() {
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			p.pos++
		case c == '[':
			end := strings.IndexByte(p.src[p.pos:], ']')
			if end < 0 {
				p.pos = len(p.src)
				return
			}
			p.pos += end + 1
		default:
			return
		}
	}
}

func (p *newickParser) parseSubtree(parent *Node) (*Node, error) {
	node := &Node{Parent: parent}
	p.skipSpace()
	if p.consume('(') {
		for {
			child, err := p.parseSubtree(node)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
			p.skipSpace()
			if p.consume(',') {
				continue
			}
			if p.consume(')') {
				break
			}
			return nil, p.errorf("expected ',' or ')'")
		}
	}

	p.skipSpace()
	name, err := p.parseLabel()
	if err != nil {
		return nil, err
	}
	node.Name = name

	p.skipSpace()
	if p.consume(':') {
		p.skipSpace()
		start := p.pos
		for p.pos < len(p.src) && strings.IndexByte("(),:;[ \t\r\n", p.src[p.pos]) < 0 {
			p.pos++
		}
		length, err := strconv.ParseFloat(p.src[start:p.pos], 64)
		if err != nil {
			return nil, p.errorf("invalid branch length %q", p.src[start:p.pos])
		}
		if length < 0 {
			return nil, p.errorf("negative branch length %g", length)
		}
		node.Length = length
	}
	return node, nil
}

func (p *newickParser) parseLabel() (string, error) {
	if p.consume('\'') {
		var sb strings.Builder
		for {
			if p.pos >= len(p.src) {
				return "", p.errorf("unterminated quoted label")
			}
			c := p.src[p.pos]
			p.pos++
			if c == '\'' {
				if p.consume('\'') {
					sb.WriteByte('\'')
					continue
				}
				return sb.String(), nil
			}
			sb.WriteByte(c)
		}
	}
	start := p.pos
	for p.pos < len(p.src) && strings.IndexByte("(),:;[ \t\r\n'", p.src[p.pos]) < 0 {
		p.pos++
	}
	return p.src[start:p.pos], nil
}
