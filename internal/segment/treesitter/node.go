package treesitter

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
)

// node is a minimal, detached mirror of a tree-sitter node: just enough to
// run target collection and dedup without holding the underlying C tree
// alive past one Segment call.
type node struct {
	Type       string
	StartByte  uint32
	EndByte    uint32
	StartLine  int // 1-based
	EndLine    int // 1-based
	HasError   bool
	Children   []*node
}

func convert(tsNode *sitter.Node) *node {
	if tsNode == nil {
		return nil
	}
	n := &node{
		Type:      tsNode.Type(),
		StartByte: tsNode.StartByte(),
		EndByte:   tsNode.EndByte(),
		StartLine: int(tsNode.StartPoint().Row) + 1,
		EndLine:   int(tsNode.EndPoint().Row) + 1,
		HasError:  tsNode.HasError(),
		Children:  make([]*node, 0, tsNode.ChildCount()),
	}
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		if child := tsNode.Child(i); child != nil {
			n.Children = append(n.Children, convert(child))
		}
	}
	return n
}

// parse runs tree-sitter on source using lang's grammar and returns the
// detached root node.
func parse(source []byte, lang *sitter.Language) (*node, error) {
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(lang)
	tree, err := p.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, errNilTree
	}
	return convert(tree.RootNode()), nil
}

func (n *node) walkHasError() bool {
	if n.HasError {
		return true
	}
	for _, c := range n.Children {
		if c.walkHasError() {
			return true
		}
	}
	return false
}
