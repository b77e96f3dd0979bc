package fbx

import (
	"github.com/binzume/fbxreader/geom"
	"github.com/pkg/errors"
)

// PoseNode is one entry of a "Pose" object. ID matches a Model id.
type PoseNode struct {
	ID int64
	// Matrix is the transpose of the 16 values stored in the file.
	Matrix     geom.Matrix4
	IsBindPose bool
}

func NewPoseNode(node, pose *Node) (*PoseNode, error) {
	idNode := node.FindChild("Node")
	if idNode == nil {
		return nil, MissingChildError{Node: node.Name, Child: "Node"}
	}
	id, err := idNode.Prop(0).Int64()
	if err != nil {
		return nil, PropertyError{Node: "Node", Cause: err}
	}
	matNode := node.FindChild("Matrix")
	if matNode == nil {
		return nil, MissingChildError{Node: node.Name, Child: "Matrix"}
	}
	values, err := matNode.Prop(0).Float64Array()
	if err == nil && len(values) != 16 {
		err = errors.Wrapf(ErrUnexpectedProperty, "want 16 values, got %d", len(values))
	}
	if err != nil {
		return nil, PropertyError{Node: "Matrix", Cause: err}
	}
	return &PoseNode{
		ID:         id,
		Matrix:     *geom.NewMatrix4FromFloat64(values).Transposed(),
		IsBindPose: pose.PropString(2) == "BindPose",
	}, nil
}

// raw returns the matrix in file layout, which is column-major.
func (p *PoseNode) raw() *geom.Matrix4 {
	return p.Matrix.Transposed()
}

func (p *PoseNode) Translation() *geom.Vector3 {
	t, _, _ := p.raw().Decompose()
	return t
}

func (p *PoseNode) Rotation() *geom.Quaternion {
	_, r, _ := p.raw().Decompose()
	return r
}

func (p *PoseNode) Scaling() *geom.Vector3 {
	_, _, s := p.raw().Decompose()
	return s
}

// PoseNodes returns the entries of every "Pose" object in file order.
func (doc *Document) PoseNodes() ([]*PoseNode, error) {
	return doc.poseNodes.get(func() ([]*PoseNode, error) {
		var poses []*PoseNode
		var errs Errors
		for _, pose := range doc.FindChild("Objects").FindChildren("Pose") {
			for _, n := range pose.FindChildren("PoseNode") {
				p, err := NewPoseNode(n, pose)
				if err != nil {
					errs = errs.Append(err)
					continue
				}
				poses = append(poses, p)
			}
		}
		return poses, errs.Return()
	})
}
