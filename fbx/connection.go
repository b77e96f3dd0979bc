package fbx

const (
	RelationObjectObject   = "OO"
	RelationObjectProperty = "OP"
)

// Connection is one "C" record. Src is the child and Dst the parent.
type Connection struct {
	Relation string
	Src      int64
	Dst      int64
	// Label names the target property for OP connections, e.g. "d|X" or
	// "Lcl Translation".
	Label string
}

func newConnection(n *Node) (*Connection, error) {
	rel, err := n.Prop(0).Text()
	if err != nil {
		return nil, PropertyError{Node: n.Name, Index: 0, Cause: err}
	}
	c := &Connection{Relation: rel}
	for i, v := range []*int64{&c.Src, &c.Dst} {
		p := n.Prop(i + 1)
		if p == nil || p.Type != TypeInt64 {
			return nil, PropertyError{Node: n.Name, Index: i + 1, Cause: p.mismatch("int64")}
		}
		*v = p.Value.(int64)
	}
	c.Label = n.PropString(3)
	return c, nil
}

// Connections returns the edges of the "Connections" block in file order.
// Malformed records are skipped and reported in err; the remaining edges
// are still returned.
func (doc *Document) Connections() ([]*Connection, error) {
	return doc.connections.get(func() ([]*Connection, error) {
		var conns []*Connection
		var errs Errors
		for _, n := range doc.FindChild("Connections").FindChildren("C") {
			c, err := newConnection(n)
			if err != nil {
				errs = errs.Append(err)
				continue
			}
			conns = append(conns, c)
		}
		return conns, errs.Return()
	})
}

type graphIndex struct {
	byDst map[int64][]*Connection
	bySrc map[int64][]*Connection
}

func (doc *Document) graphIndex() *graphIndex {
	g, _ := doc.graph.get(func() (*graphIndex, error) {
		conns, _ := doc.Connections()
		g := &graphIndex{byDst: map[int64][]*Connection{}, bySrc: map[int64][]*Connection{}}
		for _, c := range conns {
			g.byDst[c.Dst] = append(g.byDst[c.Dst], c)
			g.bySrc[c.Src] = append(g.bySrc[c.Src], c)
		}
		return g, nil
	})
	return g
}

// Connection returns the first edge from child to parent.
func (doc *Document) Connection(child, parent int64) *Connection {
	for _, c := range doc.graphIndex().bySrc[child] {
		if c.Dst == parent {
			return c
		}
	}
	return nil
}

// ConnectionType returns the label of the first edge from child to parent.
func (doc *Document) ConnectionType(child, parent int64) (string, bool) {
	c := doc.Connection(child, parent)
	if c == nil {
		return "", false
	}
	return c.Label, true
}

// ParentIDs returns the destinations of edges leaving id.
func (doc *Document) ParentIDs(id int64) []int64 {
	var r []int64
	for _, c := range doc.graphIndex().bySrc[id] {
		r = append(r, c.Dst)
	}
	return r
}

// ChildIDs returns the sources of edges arriving at id.
func (doc *Document) ChildIDs(id int64) []int64 {
	var r []int64
	for _, c := range doc.graphIndex().byDst[id] {
		r = append(r, c.Src)
	}
	return r
}

type linkedNode struct {
	node *Node
	edge *Connection
}

// sources returns the nodes named name connected to dst, in edge order.
func (doc *Document) sources(dst int64, name string) []linkedNode {
	var r []linkedNode
	for _, c := range doc.graphIndex().byDst[dst] {
		if n := doc.FindByID(c.Src); n != nil && n.Name == name {
			r = append(r, linkedNode{node: n, edge: c})
		}
	}
	return r
}
