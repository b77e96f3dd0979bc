package converter

import (
	"math"
	"testing"

	"github.com/binzume/fbxreader/fbx"
	"github.com/binzume/fbxreader/geom"
	"github.com/qmuntal/gltf"
)

func prop(v interface{}) *fbx.Property {
	switch v := v.(type) {
	case int64:
		return &fbx.Property{Type: fbx.TypeInt64, Value: v}
	case float64:
		return &fbx.Property{Type: fbx.TypeFloat64, Value: v}
	case string:
		return &fbx.Property{Type: fbx.TypeString, Value: v}
	case []int64:
		return &fbx.Property{Type: fbx.TypeInt64Array, Value: v}
	case []int32:
		return &fbx.Property{Type: fbx.TypeInt32Array, Value: v}
	case []float32:
		return &fbx.Property{Type: fbx.TypeFloat32Array, Value: v}
	case []float64:
		return &fbx.Property{Type: fbx.TypeFloat64Array, Value: v}
	}
	panic("unsupported value")
}

func newNode(name string, values []interface{}, children ...*fbx.Node) *fbx.Node {
	n := &fbx.Node{Name: name, Children: children}
	for _, v := range values {
		n.Properties = append(n.Properties, prop(v))
	}
	return n
}

func obj(kind string, id int64, name, sub string, children ...*fbx.Node) *fbx.Node {
	return newNode(kind, []interface{}{id, kind + "::" + name, sub}, children...)
}

func p70(name string, values ...float64) *fbx.Node {
	v := []interface{}{name, "", "", "A"}
	for _, f := range values {
		v = append(v, f)
	}
	return newNode("P", v)
}

func conn(rel string, src, dst int64, label string) *fbx.Node {
	return newNode("C", []interface{}{rel, src, dst, label})
}

func translation(x, y, z float64) []float64 {
	return []float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, x, y, z, 1}
}

func testScene() *fbx.Document {
	return &fbx.Document{Version: 7400, Nodes: []*fbx.Node{
		newNode("Objects", nil,
			obj("Model", 1, "Body", "Mesh"),
			obj("Geometry", 2, "Body", "Mesh"),
			obj("Model", 10, "Hips", "LimbNode", newNode("Properties70", nil,
				p70("Lcl Translation", 0, 1, 0),
			)),
			obj("Model", 11, "Spine", "LimbNode", newNode("Properties70", nil,
				p70("Lcl Translation", 0, 0.5, 0),
				p70("Lcl Rotation", 0, 0, 90),
			)),
			obj("Deformer", 20, "Skin", "Skin"),
			obj("Deformer", 21, "Hips", "Cluster",
				newNode("Indexes", []interface{}{[]int32{0}}),
				newNode("Weights", []interface{}{[]float64{1}}),
				newNode("TransformLink", []interface{}{translation(0, 1, 0)}),
			),
			obj("Deformer", 22, "Spine", "Cluster",
				newNode("TransformLink", []interface{}{translation(0, 3, 0)}),
			),
			newNode("Pose", []interface{}{int64(30), "Pose::BIND_POSES", "BindPose"},
				newNode("PoseNode", nil,
					newNode("Node", []interface{}{int64(11)}),
					newNode("Matrix", []interface{}{translation(0, 1.5, 0)}),
				),
			),
			obj("AnimationStack", 40, "Take 001", ""),
			obj("AnimationLayer", 41, "BaseLayer", ""),
			obj("AnimationCurveNode", 42, "T", "", newNode("Properties70", nil,
				p70("d|X", 0), p70("d|Y", 0.5), p70("d|Z", 0),
			)),
			obj("AnimationCurve", 43, "", "",
				newNode("Default", []interface{}{0.0}),
				newNode("KeyVer", []interface{}{int64(4008)}),
				newNode("KeyTime", []interface{}{[]int64{0, int64(fbx.UnitsPerSecond)}}),
				newNode("KeyValueFloat", []interface{}{[]float32{0, 2}}),
				newNode("KeyAttrFlags", []interface{}{[]int32{0}}),
				newNode("KeyAttrDataFloat", []interface{}{[]float32{0, 0, 0, 0}}),
				newNode("KeyAttrRefCount", []interface{}{[]int32{2}}),
			),
		),
		newNode("Connections", nil,
			conn("OO", 1, 0, ""),
			conn("OO", 2, 1, ""),
			conn("OO", 10, 0, ""),
			conn("OO", 11, 10, ""),
			conn("OO", 20, 2, ""),
			conn("OO", 21, 20, ""),
			conn("OO", 22, 20, ""),
			conn("OO", 10, 21, ""),
			conn("OO", 11, 22, ""),
			conn("OO", 41, 40, ""),
			conn("OO", 42, 41, ""),
			conn("OP", 42, 11, "Lcl Translation"),
			conn("OP", 43, 42, "d|X"),
		),
	}}
}

func TestFBXToGLTF(t *testing.T) {
	conv := NewFBXToGLTFConverter(&FBXToGLTFOption{Scale: 0.01})
	doc, err := conv.Convert(testScene())
	if err != nil {
		t.Fatal(err)
	}

	if len(doc.Nodes) != 3 || len(doc.Scenes[0].Nodes) != 2 {
		t.Fatalf("nodes: %v, scene: %v", len(doc.Nodes), doc.Scenes[0].Nodes)
	}
	hips := doc.Nodes[conv.ModelToNode[10]]
	spine := doc.Nodes[conv.ModelToNode[11]]
	if hips.Name != "Hips" || spine.Name != "Spine" {
		t.Error("names: ", hips.Name, spine.Name)
	}
	if len(hips.Children) != 1 || hips.Children[0] != conv.ModelToNode[11] {
		t.Error("hierarchy: ", hips.Children)
	}
	if hips.Translation != [3]float32{0, 0.01, 0} {
		t.Error("translation: ", hips.Translation)
	}
	if math.Abs(float64(spine.Rotation[2])-math.Sqrt2/2) > 1e-5 {
		t.Error("rotation: ", spine.Rotation)
	}

	if len(doc.Skins) != 1 {
		t.Fatal("skins: ", len(doc.Skins))
	}
	skin := doc.Skins[0]
	if skin.Name != "Body" || len(skin.Joints) != 2 || skin.Joints[0] != conv.ModelToNode[10] {
		t.Error("skin: ", skin.Name, skin.Joints)
	}
	if acc := doc.Accessors[*skin.InverseBindMatrices]; acc.Type != gltf.AccessorMat4 || acc.Count != 2 {
		t.Error("inverse bind accessor: ", acc.Type, acc.Count)
	}

	if len(doc.Animations) != 1 {
		t.Fatal("animations: ", len(doc.Animations))
	}
	a := doc.Animations[0]
	if a.Name != "Take 001" || len(a.Channels) != 1 {
		t.Fatal("animation: ", a.Name, len(a.Channels))
	}
	if ch := a.Channels[0]; *ch.Target.Node != conv.ModelToNode[11] || ch.Target.Path != gltf.TRSTranslation {
		t.Error("channel target: ", ch.Target)
	}
}

func TestInverseBindMatrix(t *testing.T) {
	cl := &fbx.Deformer{
		BindPoseMatrix: *geom.NewMatrix4(),
		TransformLink:  *geom.NewTranslateMatrix4(0, 3, 0),
	}
	// no bind pose: TransformLink
	if m := inverseBindMatrix(cl, 0.5); m[3] != [4]float32{0, -1.5, 0, 1} {
		t.Error("TransformLink fallback: ", m)
	}

	cl.BindPoseMatrix = *geom.NewTranslateMatrix4(0, 2, 0).Transposed()
	if m := inverseBindMatrix(cl, 1); m[3] != [4]float32{0, -2, 0, 1} || m[0] != [4]float32{1, 0, 0, 0} {
		t.Error("bind pose: ", m)
	}
}

func TestEvaluateCurve(t *testing.T) {
	c := &fbx.AnimCurve{
		Default:       7,
		KeyTime:       []fbx.Time{fbx.UnitsPerSecond, 3 * fbx.UnitsPerSecond},
		KeyValueFloat: []float32{10, 20},
	}
	for _, tc := range []struct {
		t    fbx.Time
		want float32
	}{
		{0, 10},
		{fbx.UnitsPerSecond, 10},
		{2 * fbx.UnitsPerSecond, 15},
		{3 * fbx.UnitsPerSecond, 20},
		{5 * fbx.UnitsPerSecond, 20},
	} {
		if v := evaluateCurve(c, tc.t); v != tc.want {
			t.Errorf("t=%v: %v != %v", tc.t.Seconds(), v, tc.want)
		}
	}
	if v := evaluateCurve(&fbx.AnimCurve{Default: 7}, 0); v != 7 {
		t.Error("empty curve: ", v)
	}
}

func TestMergeKeyTimes(t *testing.T) {
	a := &fbx.AnimCurve{KeyTime: []fbx.Time{0, 20, 40}}
	b := &fbx.AnimCurve{KeyTime: []fbx.Time{10, 20}}
	got := mergeKeyTimes([]*fbx.AnimCurve{a, nil, b})
	want := []fbx.Time{0, 10, 20, 40}
	if len(got) != len(want) {
		t.Fatal("merge: ", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Error("merge: ", got)
		}
	}
}

func TestObjectName(t *testing.T) {
	for in, want := range map[string]string{
		"Model::Hips":         "Hips",
		"AnimStack::Take 001": "Take 001",
		"plain":               "plain",
	} {
		if got := objectName(in); got != want {
			t.Errorf("%q: %q != %q", in, got, want)
		}
	}
}
