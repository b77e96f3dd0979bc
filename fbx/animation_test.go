package fbx

import (
	"reflect"
	"sync"
	"testing"

	"github.com/pkg/errors"
)

func animCurve(id int64, children ...*Node) *Node {
	if children == nil {
		children = []*Node{
			node("Default", props(0.5)),
			node("KeyVer", props(4008)),
			node("KeyTime", props([]int64{0, int64(UnitsPerSecond)})),
			node("KeyValueFloat", props([]float32{1, 2})),
			node("KeyAttrFlags", props([]int32{24840})),
			node("KeyAttrDataFloat", props([]float32{0, 0, 0, 0})),
			node("KeyAttrRefCount", props([]int32{2})),
		}
	}
	return object("AnimationCurve", id, "", "", children...)
}

func animDocument() *Document {
	return newTestDocument(
		node("Objects", nil,
			object("Model", 1, "Bone", "LimbNode"),
			object("AnimationStack", 100, "Take 001", ""),
			object("AnimationLayer", 101, "BaseLayer", ""),
			object("AnimationCurveNode", 102, "T", "", node("Properties70", nil,
				p70("d|X", "Number", 1.5),
				p70("d|Y", "Number", 2.0),
				p70("d|Z", "Number", 3.0),
			)),
			object("AnimationCurveNode", 104, "DeformPercent", "", node("Properties70", nil,
				p70("d|DeformPercent", "Number", 0.0),
			)),
			animCurve(103),
		),
		node("Connections", nil,
			oo(1, 0), oo(101, 100), oo(102, 101), op(102, 1, "Lcl Translation"), op(103, 102, "d|X"),
		),
	)
}

func TestAnimCurve(t *testing.T) {
	c, err := NewAnimCurve(animCurve(7))
	if err != nil {
		t.Fatal(err)
	}
	if c.ID != 7 || c.Default != 0.5 || c.KeyVer != 4008 {
		t.Error("curve: ", c.ID, c.Default, c.KeyVer)
	}
	if !reflect.DeepEqual(c.Seconds(), []float64{0, 1}) {
		t.Error("seconds: ", c.Seconds())
	}
	if !reflect.DeepEqual(c.KeyValueFloat, []float32{1, 2}) || len(c.KeyAttrDataFloat) != 4 {
		t.Error("values: ", c.KeyValueFloat, c.KeyAttrDataFloat)
	}

	_, err = NewAnimCurve(animCurve(8, node("Default", props(0.0))))
	var merr MissingChildError
	if !errors.As(err, &merr) || merr.Child != "KeyVer" {
		t.Error("want missing KeyVer, got ", err)
	}

	bad := animCurve(9)
	bad.FindChild("KeyValueFloat").Properties = PropertyList{newProp("x")}
	_, err = NewAnimCurve(bad)
	var perr PropertyError
	if !errors.As(err, &perr) || perr.Node != "KeyValueFloat" {
		t.Error("want KeyValueFloat error, got ", err)
	}
}

func TestAnimCurveNodes(t *testing.T) {
	doc := animDocument()
	nodes, err := doc.AnimationCurveNodes()
	if err != nil || len(nodes) != 2 {
		t.Fatal("curve nodes: ", nodes, err)
	}
	cn := nodes[0]
	if !cn.AttrX || !cn.AttrY || !cn.AttrZ || cn.Value() != [3]float32{1.5, 2, 3} {
		t.Error("values: ", cn.Value())
	}
	if !reflect.DeepEqual(cn.ParentIDs, []int64{101, 1}) || !reflect.DeepEqual(cn.ChildIDs, []int64{103}) {
		t.Error("links: ", cn.ParentIDs, cn.ChildIDs)
	}
	if other := nodes[1]; other.AttrX || other.AttrY || other.AttrZ {
		t.Error("DeformPercent must not set channels")
	}

	if c := cn.Curves["d|X"]; c == nil || c.ID != 103 {
		t.Error("curve map: ", cn.Curves)
	}
	curves, err := doc.CurvesOf(cn)
	if err != nil || len(curves) != 1 || curves[0].ID != 103 {
		t.Fatal("curves: ", curves, err)
	}
	if len(cn.Curves) != 1 {
		t.Error("CurvesOf changed the curve node: ", cn.Curves)
	}

	// not reachable from the root
	doc2 := animDocument()
	doc2.FindChild("Connections").Children = doc2.FindChild("Connections").Children[1:]
	nodes2, _ := doc2.AnimationCurveNodes()
	curves2, err := doc2.CurvesOf(nodes2[0])
	if err != nil || len(curves2) != 1 || nodes2[0].Curves["d|X"] == nil {
		t.Error("edge fallback: ", curves2, err)
	}
}

func TestCurvesOfConcurrent(t *testing.T) {
	doc := animDocument()
	nodes, err := doc.AnimationCurveNodes()
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if curves, err := doc.CurvesOf(nodes[0]); err != nil || len(curves) != 1 {
				t.Error("curves: ", curves, err)
			}
			if nodes[0].Curves["d|X"] == nil {
				t.Error("missing d|X")
			}
		}()
	}
	wg.Wait()
}

func TestAnimationStacks(t *testing.T) {
	doc := animDocument()
	stacks, err := doc.AnimationStacks()
	if err != nil || len(stacks) != 1 {
		t.Fatal("stacks: ", stacks, err)
	}
	s := stacks[0]
	if s.ID != 100 || s.Name != "AnimationStack::Take 001" || len(s.Layers) != 1 {
		t.Fatal("stack: ", s)
	}
	l := s.Layers[0]
	if l.ID != 101 || len(l.CurveNodes) != 1 || l.CurveNodes[0].ID != 102 {
		t.Fatal("layer: ", l)
	}
	if c := l.CurveNodes[0].Curves["d|X"]; c == nil || c.ID != 103 {
		t.Error("curve: ", l.CurveNodes[0].Curves)
	}

	layers, err := doc.AnimationLayers()
	if err != nil || len(layers) != 1 || len(layers[0].CurveNodes) != 1 {
		t.Error("layers: ", layers, err)
	}
}

func TestAnimationCurvesErrors(t *testing.T) {
	doc := newTestDocument(node("Objects", nil,
		animCurve(1),
		animCurve(2, node("Default", props(0.0))),
	))
	curves, err := doc.AnimationCurves()
	if len(curves) != 1 || !errors.Is(err, ErrMissingRequiredChild) {
		t.Error("curves: ", curves, err)
	}
}

func TestTime(t *testing.T) {
	if s := TimeFromSeconds(2).Seconds(); s != 2 {
		t.Error("seconds: ", s)
	}
	if f := (unitsPerFrame * 3).Frames(); f != 3 {
		t.Error("frames: ", f)
	}
	if f := UnitsPerSecond.FramesAt(24); f != 24 {
		t.Error("frames at 24: ", f)
	}
	if UnitsPerSecond/30 != unitsPerFrame {
		t.Error("frame length")
	}
}
