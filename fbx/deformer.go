package fbx

import (
	"github.com/binzume/fbxreader/geom"
	"github.com/pkg/errors"
)

type DeformerKind int

const (
	DeformerNone DeformerKind = iota
	DeformerSkin
	DeformerCluster
)

func (k DeformerKind) String() string {
	switch k {
	case DeformerSkin:
		return "Skin"
	case DeformerCluster:
		return "Cluster"
	}
	return "None"
}

// Deformer is a skin or one of its clusters. Cluster data is only read for
// DeformerCluster.
type Deformer struct {
	ID   int64
	Name string
	Kind DeformerKind

	// BoneID is the id of the bound Model. Set by DeformerFromTree.
	BoneID int64

	Indexes []int32
	Weights []float32
	// Transform is the global transform of the mesh at binding time.
	Transform geom.Matrix4
	// TransformLink is the global transform of the bone at binding time.
	TransformLink geom.Matrix4
	// BindPoseMatrix is PoseNode.Matrix of the bone's bind pose, or identity.
	// Unlike Transform and TransformLink it is transposed.
	BindPoseMatrix geom.Matrix4
}

// BindPose returns BindPoseMatrix in file layout, the layout of TransformLink.
func (d *Deformer) BindPose() *geom.Matrix4 {
	return d.BindPoseMatrix.Transposed()
}

func readMatrix16(n *Node) (geom.Matrix4, error) {
	values, err := n.Prop(0).Float64Array()
	if err == nil && len(values) != 16 {
		err = errors.Wrapf(ErrUnexpectedProperty, "want 16 values, got %d", len(values))
	}
	if err != nil {
		return geom.Matrix4{}, PropertyError{Node: n.Name, Cause: err}
	}
	return *geom.NewMatrix4FromFloat64(values), nil
}

func NewDeformer(node *Node) (*Deformer, error) {
	id, ok := node.ID()
	if !ok {
		return nil, PropertyError{Node: node.Name, Index: 0, Cause: node.Prop(0).mismatch("int64")}
	}
	d := &Deformer{
		ID:             id,
		Name:           node.PropString(1),
		Transform:      *geom.NewMatrix4(),
		TransformLink:  *geom.NewMatrix4(),
		BindPoseMatrix: *geom.NewMatrix4(),
	}
	switch node.PropString(2) {
	case "Skin":
		d.Kind = DeformerSkin
	case "Cluster":
		d.Kind = DeformerCluster
	}
	if d.Kind != DeformerCluster {
		return d, nil
	}

	var err error
	if n := node.FindChild("Indexes"); n != nil {
		if d.Indexes, err = n.Prop(0).Int32Array(); err != nil {
			return nil, PropertyError{Node: n.Name, Cause: err}
		}
	}
	if n := node.FindChild("Weights"); n != nil {
		if d.Weights, err = n.Prop(0).Float32Array(); err != nil {
			return nil, PropertyError{Node: n.Name, Cause: err}
		}
	}
	if n := node.FindChild("Transform"); n != nil {
		if d.Transform, err = readMatrix16(n); err != nil {
			return nil, err
		}
	}
	if n := node.FindChild("TransformLink"); n != nil {
		if d.TransformLink, err = readMatrix16(n); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// DeformerFromTree reads the deformer of tn and binds it to the first Model
// child. The bind pose is taken from the first bind pose entry of that model.
func DeformerFromTree(tn *TreeNode, poses []*PoseNode) (*Deformer, error) {
	d, err := NewDeformer(tn.Node)
	if err != nil {
		return nil, err
	}
	model := tn.ChildOfKind("Model")
	if model == nil {
		return nil, MissingChildError{Node: tn.Node.Name, Child: "Model"}
	}
	d.BoneID = model.ID()
	for _, p := range poses {
		if p.ID == d.BoneID && p.IsBindPose {
			d.BindPoseMatrix = p.Matrix
			break
		}
	}
	return d, nil
}

// Deformers returns every "Deformer" object of the document.
func (doc *Document) Deformers() ([]*Deformer, error) {
	return doc.deformers.get(func() ([]*Deformer, error) {
		var deformers []*Deformer
		var errs Errors
		for _, n := range doc.FindChild("Objects").FindChildren("Deformer") {
			d, err := NewDeformer(n)
			if err != nil {
				errs = errs.Append(err)
				continue
			}
			deformers = append(deformers, d)
		}
		return deformers, errs.Return()
	})
}

// Clusters returns the clusters of the first skin attached to a geometry
// tree node, each bound to its bone.
func (doc *Document) Clusters(geometry *TreeNode) ([]*Deformer, error) {
	skin := geometry.ChildOfKind("Deformer")
	if skin == nil {
		return nil, nil
	}
	poses, err := doc.PoseNodes()
	errs := Errors{}.Append(err)
	var clusters []*Deformer
	for _, c := range skin.ChildrenOfKind("Deformer") {
		d, err := DeformerFromTree(c, poses)
		if err != nil {
			errs = errs.Append(err)
			continue
		}
		clusters = append(clusters, d)
	}
	return clusters, errs.Return()
}
