package localise

import "strings"

// NodeKind identifies the role of a node in the pattern tree.
type NodeKind int

const (
	NodeRoot NodeKind = iota
	NodeNamedGroup
	NodeNamedString
	NodeString
	NodeText
	NodeNumberSign
	NodeCommand
	NodePattern
	NodeIdentifier
	NodeSelector
)

func (k NodeKind) String() string {
	switch k {
	case NodeRoot:
		return "root"
	case NodeNamedGroup:
		return "named_group"
	case NodeNamedString:
		return "named_string"
	case NodeString:
		return "string"
	case NodeText:
		return "text"
	case NodeNumberSign:
		return "number_sign"
	case NodeCommand:
		return "command"
	case NodePattern:
		return "pattern"
	case NodeIdentifier:
		return "identifier"
	case NodeSelector:
		return "selector"
	}
	return "unknown"
}

// noParent marks the root node's parent index.
const noParent = -1

// Node is one entry of the tree arena. Container kinds carry children,
// leaf kinds carry tokens; no kind carries both.
type Node struct {
	Kind     NodeKind
	Parent   int
	Children []int
	Tokens   []Token
}

// Text concatenates the node's token substrings.
func (n *Node) Text() string {
	if n == nil || len(n.Tokens) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, token := range n.Tokens {
		sb.WriteString(token.Text)
	}
	return sb.String()
}

// Tree is an arena of pattern nodes keyed by index, with node 0 as root.
type Tree struct {
	nodes []Node
}

func newTree() *Tree {
	t := &Tree{}
	t.nodes = append(t.nodes, Node{Kind: NodeRoot, Parent: noParent})
	return t
}

// Len reports the number of nodes in the arena.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// Node returns the node at index, or nil when out of range.
func (t *Tree) Node(index int) *Node {
	if t == nil || index < 0 || index >= len(t.nodes) {
		return nil
	}
	return &t.nodes[index]
}

// Root returns the index of the root node.
func (t *Tree) Root() int { return 0 }

func (t *Tree) add(kind NodeKind, parent int) int {
	index := len(t.nodes)
	t.nodes = append(t.nodes, Node{Kind: kind, Parent: parent})
	if node := t.Node(parent); node != nil {
		node.Children = append(node.Children, index)
	}
	return index
}

func (t *Tree) appendToken(index int, token Token) {
	if node := t.Node(index); node != nil {
		node.Tokens = append(node.Tokens, token)
	}
}

// lastChild returns the index of the last child of parent, or -1.
func (t *Tree) lastChild(parent int) int {
	node := t.Node(parent)
	if node == nil || len(node.Children) == 0 {
		return -1
	}
	return node.Children[len(node.Children)-1]
}
