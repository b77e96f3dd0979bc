package fbx

import (
	"strings"
)

// AnimCurve is the keyframe data of one channel.
type AnimCurve struct {
	ID   int64
	Name string

	Default          float64
	KeyVer           int32
	KeyTime          []Time
	KeyValueFloat    []float32
	KeyAttrFlags     []int32
	KeyAttrDataFloat []float32
	KeyAttrRefCount  []int32
}

func requiredChild(node *Node, name string) (*Property, error) {
	c := node.FindChild(name)
	if c == nil {
		return nil, MissingChildError{Node: node.Name, Child: name}
	}
	return c.Prop(0), nil
}

func NewAnimCurve(node *Node) (*AnimCurve, error) {
	id, ok := node.ID()
	if !ok {
		return nil, PropertyError{Node: node.Name, Index: 0, Cause: node.Prop(0).mismatch("int64")}
	}
	c := &AnimCurve{ID: id, Name: node.PropString(1)}

	for _, f := range []struct {
		name string
		read func(p *Property) error
	}{
		{"Default", func(p *Property) (err error) { c.Default, err = p.Float64(); return }},
		{"KeyVer", func(p *Property) error {
			v, err := p.Int64()
			c.KeyVer = int32(v)
			return err
		}},
		{"KeyTime", func(p *Property) error {
			v, err := p.Int64Array()
			c.KeyTime = make([]Time, len(v))
			for i, t := range v {
				c.KeyTime[i] = Time(t)
			}
			return err
		}},
		{"KeyValueFloat", func(p *Property) (err error) { c.KeyValueFloat, err = p.Float32Array(); return }},
		{"KeyAttrFlags", func(p *Property) (err error) { c.KeyAttrFlags, err = p.Int32Array(); return }},
		{"KeyAttrDataFloat", func(p *Property) (err error) { c.KeyAttrDataFloat, err = p.Float32Array(); return }},
		{"KeyAttrRefCount", func(p *Property) (err error) { c.KeyAttrRefCount, err = p.Int32Array(); return }},
	} {
		p, err := requiredChild(node, f.name)
		if err != nil {
			return nil, err
		}
		if err := f.read(p); err != nil {
			return nil, PropertyError{Node: f.name, Cause: err}
		}
	}
	return c, nil
}

// Seconds returns the key times in seconds.
func (c *AnimCurve) Seconds() []float64 {
	r := make([]float64, len(c.KeyTime))
	for i, t := range c.KeyTime {
		r[i] = t.Seconds()
	}
	return r
}

// AnimCurveNode binds up to three curves to the channels of one property.
type AnimCurveNode struct {
	ID   int64
	Name string // "T", "R", "S", ...

	AttrX, AttrY, AttrZ    bool
	ValueX, ValueY, ValueZ float32

	// ParentIDs are the objects this node animates, ChildIDs its curves.
	ParentIDs []int64
	ChildIDs  []int64

	// Curves is keyed by connection label ("d|X"), or the curve name. It is
	// filled by the Document accessors that build curve nodes.
	Curves map[string]*AnimCurve
}

func (cn *AnimCurveNode) Value() [3]float32 {
	return [3]float32{cn.ValueX, cn.ValueY, cn.ValueZ}
}

func NewAnimCurveNode(node *Node) (*AnimCurveNode, error) {
	id, ok := node.ID()
	if !ok {
		return nil, PropertyError{Node: node.Name, Index: 0, Cause: node.Prop(0).mismatch("int64")}
	}
	cn := &AnimCurveNode{ID: id, Name: node.PropString(1), Curves: map[string]*AnimCurve{}}
	if !strings.ContainsAny(cn.Name, "TRS") {
		return cn, nil
	}
	for _, p := range node.Properties70() {
		name := p.PropString(0)
		var attr *bool
		var value *float32
		switch {
		case strings.Contains(name, "X"):
			attr, value = &cn.AttrX, &cn.ValueX
		case strings.Contains(name, "Y"):
			attr, value = &cn.AttrY, &cn.ValueY
		case strings.Contains(name, "Z"):
			attr, value = &cn.AttrZ, &cn.ValueZ
		default:
			continue
		}
		v, err := p.Prop(4).Float64()
		if err != nil {
			return nil, PropertyError{Node: node.Name, Name: name, Index: 4, Cause: err}
		}
		*attr, *value = true, float32(v)
	}
	return cn, nil
}

// NewAnimCurveNodeFromGraph also fills ParentIDs and ChildIDs from the
// connections of doc.
func NewAnimCurveNodeFromGraph(node *Node, doc *Document) (*AnimCurveNode, error) {
	cn, err := NewAnimCurveNode(node)
	if err != nil {
		return nil, err
	}
	cn.ParentIDs = doc.ParentIDs(cn.ID)
	cn.ChildIDs = doc.ChildIDs(cn.ID)
	return cn, nil
}

type AnimLayer struct {
	ID         int64
	Name       string
	CurveNodes []*AnimCurveNode
}

type AnimStack struct {
	ID     int64
	Name   string
	Layers []*AnimLayer
}

func newAnimContainer(node *Node) (int64, string, error) {
	id, ok := node.ID()
	if !ok {
		return 0, "", PropertyError{Node: node.Name, Index: 0, Cause: node.Prop(0).mismatch("int64")}
	}
	return id, node.PropString(1), nil
}

func (doc *Document) AnimationCurves() ([]*AnimCurve, error) {
	return doc.curves.get(func() ([]*AnimCurve, error) {
		var r []*AnimCurve
		var errs Errors
		for _, n := range doc.FindAll("AnimationCurve") {
			c, err := NewAnimCurve(n)
			if err != nil {
				errs = errs.Append(err)
				continue
			}
			r = append(r, c)
		}
		return r, errs.Return()
	})
}

// AnimationCurveNodes returns every curve node with its links and curves.
func (doc *Document) AnimationCurveNodes() ([]*AnimCurveNode, error) {
	return doc.curveNodes.get(func() ([]*AnimCurveNode, error) {
		var r []*AnimCurveNode
		var errs Errors
		for _, n := range doc.FindAll("AnimationCurveNode") {
			cn, err := NewAnimCurveNodeFromGraph(n, doc)
			if err != nil {
				errs = errs.Append(err)
				continue
			}
			links, err := doc.curveLinks(cn.ID)
			errs = errs.Append(err)
			_, err = readCurves(cn, links)
			errs = errs.Append(err)
			r = append(r, cn)
		}
		return r, errs.Return()
	})
}

// readCurves decodes the curves in links and adds them to cn.Curves, keyed
// by connection label or curve name.
func readCurves(cn *AnimCurveNode, links []linkedNode) ([]*AnimCurve, error) {
	var r []*AnimCurve
	var errs Errors
	for _, l := range links {
		c, err := NewAnimCurve(l.node)
		if err != nil {
			errs = errs.Append(err)
			continue
		}
		if cn != nil {
			key := l.edge.Label
			if key == "" {
				key = c.Name
			}
			cn.Curves[key] = c
		}
		r = append(r, c)
	}
	return r, errs.Return()
}

// curveLinks returns the curves below the object id in the scene tree, or
// its incoming curve edges when id is not reachable from the root.
func (doc *Document) curveLinks(id int64) ([]linkedNode, error) {
	root, err := doc.RootNode()
	if err != nil {
		return nil, err
	}
	tn := root.FindByID(id)
	if tn == nil {
		return doc.sources(id, "AnimationCurve"), nil
	}
	var r []linkedNode
	for _, t := range tn.ChildrenOfKind("AnimationCurve") {
		r = append(r, linkedNode{node: t.Node, edge: t.Edge})
	}
	return r, nil
}

// CurvesOf decodes the curves owned by cn in the scene tree, falling back to
// the raw connections when cn is not reachable from the root. cn is not
// modified.
func (doc *Document) CurvesOf(cn *AnimCurveNode) ([]*AnimCurve, error) {
	links, err := doc.curveLinks(cn.ID)
	if err != nil {
		return nil, err
	}
	return readCurves(nil, links)
}

func (doc *Document) layer(node *Node) (*AnimLayer, error) {
	id, name, err := newAnimContainer(node)
	if err != nil {
		return nil, err
	}
	layer := &AnimLayer{ID: id, Name: name}
	var errs Errors
	for _, l := range doc.sources(id, "AnimationCurveNode") {
		cn, err := NewAnimCurveNodeFromGraph(l.node, doc)
		if err != nil {
			errs = errs.Append(err)
			continue
		}
		_, err = readCurves(cn, doc.sources(cn.ID, "AnimationCurve"))
		errs = errs.Append(err)
		layer.CurveNodes = append(layer.CurveNodes, cn)
	}
	return layer, errs.Return()
}

// AnimationLayers returns every layer with its curve nodes and their curves.
func (doc *Document) AnimationLayers() ([]*AnimLayer, error) {
	return doc.layers.get(func() ([]*AnimLayer, error) {
		var r []*AnimLayer
		var errs Errors
		for _, n := range doc.FindAll("AnimationLayer") {
			layer, err := doc.layer(n)
			errs = errs.Append(err)
			if layer != nil {
				r = append(r, layer)
			}
		}
		return r, Union(errs...)
	})
}

// AnimationStacks returns every stack assembled as stack, layers, curve
// nodes and curves.
func (doc *Document) AnimationStacks() ([]*AnimStack, error) {
	return doc.stacks.get(func() ([]*AnimStack, error) {
		var r []*AnimStack
		var errs Errors
		for _, n := range doc.FindAll("AnimationStack") {
			id, name, err := newAnimContainer(n)
			if err != nil {
				errs = errs.Append(err)
				continue
			}
			stack := &AnimStack{ID: id, Name: name}
			for _, l := range doc.sources(id, "AnimationLayer") {
				layer, err := doc.layer(l.node)
				errs = errs.Append(err)
				if layer != nil {
					stack.Layers = append(stack.Layers, layer)
				}
			}
			r = append(r, stack)
		}
		return r, Union(errs...)
	})
}
