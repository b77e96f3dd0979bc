package fbx

import (
	"github.com/binzume/fbxreader/geom"
)

type ModelKind int

const (
	ModelNone ModelKind = iota
	ModelMesh
	ModelLimbNode
)

func (k ModelKind) String() string {
	switch k {
	case ModelMesh:
		return "Mesh"
	case ModelLimbNode:
		return "LimbNode"
	}
	return "None"
}

type InheritType int

const (
	InheritRrSs InheritType = iota
	InheritRSrs
	InheritRrs
)

type Model struct {
	ID          int64
	Name        string
	Kind        ModelKind
	HasGeometry bool

	LclTranslation       geom.Vector3
	LclRotation          geom.Vector3 // Euler degrees, XYZ order
	LclScaling           geom.Vector3
	PreRotation          geom.Vector3
	PostRotation         geom.Vector3
	GeometricTranslation geom.Vector3
	GeometricRotation    geom.Vector3
	GeometricScaling     geom.Vector3
	RotationActive       bool
	InheritType          InheritType
}

// vec3Property reads slots 4..6 of a Properties70 entry.
func vec3Property(owner string, p *Node) (geom.Vector3, error) {
	var v [3]float64
	for i := range v {
		f, err := p.Prop(4 + i).Float64()
		if err != nil {
			return geom.Vector3{}, PropertyError{Node: owner, Name: p.PropString(0), Index: 4 + i, Cause: err}
		}
		v[i] = f
	}
	return *geom.NewVector3FromFloat64(v[0], v[1], v[2]), nil
}

func NewModel(node *Node) (*Model, error) {
	id, ok := node.ID()
	if !ok {
		return nil, PropertyError{Node: node.Name, Index: 0, Cause: node.Prop(0).mismatch("int64")}
	}
	m := &Model{
		ID:               id,
		Name:             node.PropString(1),
		HasGeometry:      node.FindChild("Geometry") != nil,
		LclScaling:       geom.Vector3{X: 1, Y: 1, Z: 1},
		GeometricScaling: geom.Vector3{X: 1, Y: 1, Z: 1},
		InheritType:      InheritRSrs,
	}
	switch node.PropString(2) {
	case "Mesh":
		m.Kind = ModelMesh
	case "LimbNode":
		m.Kind = ModelLimbNode
	}

	vectors := map[string]*geom.Vector3{
		"Lcl Translation":      &m.LclTranslation,
		"Lcl Rotation":         &m.LclRotation,
		"Lcl Scaling":          &m.LclScaling,
		"PreRotation":          &m.PreRotation,
		"PostRotation":         &m.PostRotation,
		"GeometricTranslation": &m.GeometricTranslation,
		"GeometricRotation":    &m.GeometricRotation,
		"GeometricScaling":     &m.GeometricScaling,
	}
	for _, p := range node.Properties70() {
		name := p.PropString(0)
		if dst, ok := vectors[name]; ok {
			v, err := vec3Property(node.Name, p)
			if err != nil {
				return nil, err
			}
			*dst = v
			continue
		}
		switch name {
		case "RotationActive":
			b, err := p.Prop(4).Bool()
			if err != nil {
				return nil, PropertyError{Node: node.Name, Name: name, Index: 4, Cause: err}
			}
			m.RotationActive = b
		case "InheritType":
			n, err := p.Prop(4).Int64()
			if err != nil {
				return nil, PropertyError{Node: node.Name, Name: name, Index: 4, Cause: err}
			}
			m.InheritType = InheritType(n)
		}
	}
	return m, nil
}

func eulerDegreesToQuaternion(v *geom.Vector3) *geom.Quaternion {
	r := v.ToRadians()
	return geom.NewEuler(r.X, r.Y, r.Z, geom.RotationOrderXYZ).ToQuaternion()
}

// Rotation composes PostRotation * LclRotation * PreRotation.
func (m *Model) Rotation() *geom.Quaternion {
	pre := eulerDegreesToQuaternion(&m.PreRotation)
	lcl := eulerDegreesToQuaternion(&m.LclRotation)
	post := eulerDegreesToQuaternion(&m.PostRotation)
	return post.Mul(lcl.Mul(pre))
}

// Transform composes the local translation, Rotation and the geometric scale.
func (m *Model) Transform() *geom.Matrix4 {
	return geom.NewTRSMatrix4(&m.LclTranslation, m.Rotation(), &m.GeometricScaling)
}

// Models returns every "Model" node of the document that could be read. Failures
// are collected in err.
func (doc *Document) Models() ([]*Model, error) {
	return doc.models.get(func() ([]*Model, error) {
		var models []*Model
		var errs Errors
		for _, n := range doc.FindChild("Objects").FindChildren("Model") {
			m, err := NewModel(n)
			if err != nil {
				errs = errs.Append(err)
				continue
			}
			models = append(models, m)
		}
		return models, errs.Return()
	})
}
