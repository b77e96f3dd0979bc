package fbx

import (
	"fmt"
	"io"
	"sync"
)

// lazy computes a value once and keeps the result and error.
type lazy[T any] struct {
	once  sync.Once
	value T
	err   error
}

func (l *lazy[T]) get(fn func() (T, error)) (T, error) {
	l.once.Do(func() {
		l.value, l.err = fn()
	})
	return l.value, l.err
}

// Document is a decoded binary FBX file. The raw nodes are immutable after
// decoding. Derived views are built on first use and cached.
type Document struct {
	Version    uint32
	Nodes      []*Node
	FooterCode [footerCodeSize]byte
	// Warnings lists deviations in the footer tail.
	Warnings Errors

	index          lazy[*nodeIndex]
	connections    lazy[[]*Connection]
	graph          lazy[*graphIndex]
	root           lazy[*TreeNode]
	globalSettings lazy[*GlobalSettings]
	poseNodes      lazy[[]*PoseNode]
	models         lazy[[]*Model]
	deformers      lazy[[]*Deformer]
	curves         lazy[[]*AnimCurve]
	curveNodes     lazy[[]*AnimCurveNode]
	layers         lazy[[]*AnimLayer]
	stacks         lazy[[]*AnimStack]
}

type nodeIndex struct {
	byID map[int64]*Node
}

func (idx *nodeIndex) add(n, parent *Node) {
	// PoseNode/Node is a reference to the posed object, not an object.
	isRef := n.Name == "Node" && parent != nil && parent.Name == "PoseNode"
	if id, ok := n.ID(); ok && !isRef {
		if _, exists := idx.byID[id]; !exists {
			idx.byID[id] = n
		}
	}
	for _, c := range n.Children {
		idx.add(c, n)
	}
}

func (doc *Document) nodeIndex() *nodeIndex {
	idx, _ := doc.index.get(func() (*nodeIndex, error) {
		idx := &nodeIndex{byID: map[int64]*Node{}}
		for _, n := range doc.Nodes {
			idx.add(n, nil)
		}
		return idx, nil
	})
	return idx
}

func (doc *Document) walk(fn func(*Node) bool) {
	for _, n := range doc.Nodes {
		if !n.walk(fn) {
			return
		}
	}
}

// FindChild returns the first top-level node named name.
func (doc *Document) FindChild(name string) *Node {
	for _, n := range doc.Nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// FindByID returns the first node in depth-first order whose id is id.
// The Node reference inside a PoseNode never matches.
func (doc *Document) FindByID(id int64) *Node {
	return doc.nodeIndex().byID[id]
}

// FindAll returns every node named name in depth-first pre-order.
func (doc *Document) FindAll(name string) []*Node {
	var r []*Node
	doc.walk(func(n *Node) bool {
		if n.Name == name {
			r = append(r, n)
		}
		return true
	})
	return r
}

// Creator returns the name of the exporting application.
func (doc *Document) Creator() string {
	if s, err := doc.FindChild("Creator").Prop(0).Text(); err == nil {
		return s
	}
	return doc.FindChild("FBXHeaderExtension").FindChild("Creator").PropString(0)
}

func (doc *Document) CreationTime() string {
	return doc.FindChild("CreationTime").PropString(0)
}

func (doc *Document) Timestamp() (Timestamp, error) {
	return readTimestamp(doc.Nodes)
}

// Dump writes the raw node tree. Arrays longer than 16 elements are elided
// unless full is set.
func (doc *Document) Dump(w io.Writer, full bool) {
	fmt.Fprintf(w, "; FBX %d.%d.%d project file\n", doc.Version/1000, doc.Version%1000/100, doc.Version%100)
	for _, n := range doc.Nodes {
		n.Dump(w, 0, full)
	}
}
