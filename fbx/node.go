package fbx

import (
	"fmt"
	"io"
	"strings"
)

// Node is one record of the binary document tree.
type Node struct {
	Name       string
	Properties PropertyList
	Children   []*Node
}

func (n *Node) FindChild(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (n *Node) FindChildren(name string) []*Node {
	if n == nil {
		return nil
	}
	var r []*Node
	for _, c := range n.Children {
		if c.Name == name {
			r = append(r, c)
		}
	}
	return r
}

func (n *Node) Prop(i int) *Property {
	if n == nil {
		return nil
	}
	return n.Properties.Get(i)
}

func (n *Node) PropString(i int) string {
	return n.Prop(i).ToString("")
}

// ID returns the object id stored in the first property.
func (n *Node) ID() (int64, bool) {
	p := n.Prop(0)
	if p == nil || p.Type != TypeInt64 {
		return 0, false
	}
	return p.Value.(int64), true
}

// DisplayName returns the second property when it is a string.
func (n *Node) DisplayName() (string, bool) {
	s, err := n.Prop(1).Text()
	return s, err == nil
}

// Kind returns the third property when it is a string, e.g. "Mesh" or "Cluster".
func (n *Node) Kind() (string, bool) {
	s, err := n.Prop(2).Text()
	return s, err == nil
}

// Property70 returns the "P" entry of the Properties70 child named name.
func (n *Node) Property70(name string) *Node {
	for _, p := range n.FindChild("Properties70").FindChildren("P") {
		if s, err := p.Prop(0).Text(); err == nil && s == name {
			return p
		}
	}
	return nil
}

// Properties70 returns every "P" entry of the Properties70 child.
func (n *Node) Properties70() []*Node {
	return n.FindChild("Properties70").FindChildren("P")
}

// walk visits n and its descendants in depth-first pre-order until fn returns false.
func (n *Node) walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

func (n *Node) Dump(w io.Writer, d int, full bool) {
	fmt.Fprint(w, strings.Repeat("  ", d), n.Name, ":")
	for i, p := range n.Properties {
		if i == 0 {
			fmt.Fprint(w, " ", p.Format(full))
		} else {
			fmt.Fprint(w, ", ", p.Format(full))
		}
	}
	if len(n.Children) > 0 || len(n.Properties) == 0 {
		fmt.Fprintln(w, " {")
		for _, c := range n.Children {
			c.Dump(w, d+1, full)
		}
		fmt.Fprintln(w, strings.Repeat("  ", d)+"}")
	} else {
		fmt.Fprintln(w, "")
	}
}
