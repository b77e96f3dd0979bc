package fbx

import (
	"fmt"
	"io"
	"strings"
)

// TreeNode is one element of the scene tree rebuilt from the connection
// graph. The root has no Node and stands for id 0.
type TreeNode struct {
	Node     *Node
	Parent   *TreeNode
	Edge     *Connection // edge to Parent; nil for the root
	Children []*TreeNode
}

func (t *TreeNode) ID() int64 {
	if t == nil || t.Node == nil {
		return 0
	}
	id, _ := t.Node.ID()
	return id
}

// Name returns the display name of the backing node.
func (t *TreeNode) Name() string {
	if t == nil || t.Node == nil {
		return ""
	}
	s, _ := t.Node.DisplayName()
	return s
}

// FindByID searches t and its descendants depth-first.
func (t *TreeNode) FindByID(id int64) *TreeNode {
	var found *TreeNode
	t.Walk(func(n *TreeNode, _ int) bool {
		if n.Node != nil && n.ID() == id {
			found = n
		}
		return found == nil
	})
	return found
}

// FindByName searches t and its descendants for a display name.
func (t *TreeNode) FindByName(name string) *TreeNode {
	var found *TreeNode
	t.Walk(func(n *TreeNode, _ int) bool {
		if n.Node != nil && n.Name() == name {
			found = n
		}
		return found == nil
	})
	return found
}

// ChildrenOfKind returns the direct children whose raw node is named nodeName.
func (t *TreeNode) ChildrenOfKind(nodeName string) []*TreeNode {
	var r []*TreeNode
	for _, c := range t.Children {
		if c.Node.Name == nodeName {
			r = append(r, c)
		}
	}
	return r
}

func (t *TreeNode) ChildOfKind(nodeName string) *TreeNode {
	for _, c := range t.Children {
		if c.Node.Name == nodeName {
			return c
		}
	}
	return nil
}

// Walk visits t and its descendants in pre-order until fn returns false.
func (t *TreeNode) Walk(fn func(n *TreeNode, depth int) bool) {
	t.walk(fn, 0)
}

func (t *TreeNode) walk(fn func(*TreeNode, int) bool, depth int) bool {
	if t == nil {
		return true
	}
	if !fn(t, depth) {
		return false
	}
	for _, c := range t.Children {
		if !c.walk(fn, depth+1) {
			return false
		}
	}
	return true
}

func (t *TreeNode) Dump(w io.Writer) {
	t.Walk(func(n *TreeNode, depth int) bool {
		pad := strings.Repeat("  ", depth)
		if n.Node == nil {
			fmt.Fprintln(w, pad+"Root")
			return true
		}
		if name := n.Name(); name != "" {
			fmt.Fprintf(w, "%s%d (%s) - %s\n", pad, n.ID(), name, n.Node.Name)
		} else {
			fmt.Fprintf(w, "%s%d - %s\n", pad, n.ID(), n.Node.Name)
		}
		return true
	})
}

// RootNode returns the scene tree. Subtrees reachable from several parents
// are repeated under each of them. A connection that closes a loop yields a
// CyclicGraphError.
func (doc *Document) RootNode() (*TreeNode, error) {
	return doc.root.get(func() (*TreeNode, error) {
		root := &TreeNode{}
		path := map[int64]bool{0: true}
		if err := doc.attachChildren(root, 0, path); err != nil {
			return nil, err
		}
		return root, nil
	})
}

func (doc *Document) attachChildren(parent *TreeNode, id int64, path map[int64]bool) error {
	for _, c := range doc.graphIndex().byDst[id] {
		node := doc.FindByID(c.Src)
		if node == nil {
			continue
		}
		if path[c.Src] {
			return CyclicGraphError{ID: c.Src}
		}
		child := &TreeNode{Node: node, Parent: parent, Edge: c}
		path[c.Src] = true
		err := doc.attachChildren(child, c.Src, path)
		delete(path, c.Src)
		if err != nil {
			return err
		}
		parent.Children = append(parent.Children, child)
	}
	return nil
}
