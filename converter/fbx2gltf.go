package converter

import (
	"strings"

	"github.com/binzume/fbxreader/fbx"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

type FBXToGLTFOption struct {
	Scale float32 // Default: 1

	IgnoreAnimation bool
	IgnoreSkin      bool
}

type fbxToGltf struct {
	*FBXToGLTFOption
	*gltf.Document
	src *fbx.Document

	models map[int64]*fbx.Model
	// ModelToNode maps a model id to the first glTF node created for it.
	ModelToNode map[int64]uint32
}

func NewFBXToGLTFConverter(options *FBXToGLTFOption) *fbxToGltf {
	if options == nil {
		options = &FBXToGLTFOption{}
	}
	if options.Scale == 0 {
		options.Scale = 1
	}
	return &fbxToGltf{
		FBXToGLTFOption: options,
		Document:        gltf.NewDocument(),
		models:          map[int64]*fbx.Model{},
		ModelToNode:     map[int64]uint32{},
	}
}

// objectName strips the class prefix of a binary object name ("Model::Hips").
func objectName(name string) string {
	if i := strings.Index(name, "::"); i >= 0 {
		return name[i+2:]
	}
	return name
}

func (c *fbxToGltf) addMatrices(mat [][4][4]float32) uint32 {
	a := make([][4]float32, len(mat)*4)
	for i, m := range mat {
		a[i*4+0] = m[0]
		a[i*4+1] = m[1]
		a[i*4+2] = m[2]
		a[i*4+3] = m[3]
	}
	acc := modeler.WriteTangent(c.Document, a)
	c.Accessors[acc].Type = gltf.AccessorMat4
	c.Accessors[acc].Count /= 4
	c.BufferViews[*c.Accessors[acc].BufferView].ByteStride *= 4
	return acc
}

func (c *fbxToGltf) addNode(m *fbx.Model) uint32 {
	q := m.Rotation()
	s := c.Scale
	node := &gltf.Node{
		Name:        objectName(m.Name),
		Translation: [3]float32{m.LclTranslation.X * s, m.LclTranslation.Y * s, m.LclTranslation.Z * s},
		Rotation:    [4]float32{q.X, q.Y, q.Z, q.W},
		Scale:       [3]float32{m.LclScaling.X, m.LclScaling.Y, m.LclScaling.Z},
	}
	idx := uint32(len(c.Nodes))
	c.Nodes = append(c.Nodes, node)
	if _, exists := c.ModelToNode[m.ID]; !exists {
		c.ModelToNode[m.ID] = idx
	}
	return idx
}

// addModelNodes follows Model to Model edges below parent.
func (c *fbxToGltf) addModelNodes(parent *fbx.TreeNode, parentNode *gltf.Node) {
	for _, tn := range parent.ChildrenOfKind("Model") {
		m := c.models[tn.ID()]
		if m == nil {
			continue
		}
		idx := c.addNode(m)
		if parentNode == nil {
			c.Scenes[0].Nodes = append(c.Scenes[0].Nodes, idx)
		} else {
			parentNode.Children = append(parentNode.Children, idx)
		}
		c.addModelNodes(tn, c.Nodes[idx])
	}
}

// inverseBindMatrix returns the inverse of the bone's global transform at
// binding time, with the translation scaled. TransformLink is used when the
// document has no bind pose for the bone.
func inverseBindMatrix(cl *fbx.Deformer, scale float32) [4][4]float32 {
	bind := cl.BindPose()
	if bind.IsIdentity() && !cl.TransformLink.IsIdentity() {
		bind = cl.TransformLink.Clone()
	}
	bind[12], bind[13], bind[14] = bind[12]*scale, bind[13]*scale, bind[14]*scale

	var r [4][4]float32
	inv := bind.Inverse()
	for col := range r {
		copy(r[col][:], inv[col*4:col*4+4])
	}
	return r
}

func (c *fbxToGltf) addSkins(root *fbx.TreeNode) error {
	var errs fbx.Errors
	root.Walk(func(tn *fbx.TreeNode, _ int) bool {
		if tn.Node == nil || tn.Node.Name != "Model" {
			return true
		}
		for _, g := range tn.ChildrenOfKind("Geometry") {
			clusters, err := c.src.Clusters(g)
			errs = errs.Append(err)

			var joints []uint32
			var invmats [][4][4]float32
			for _, cl := range clusters {
				j, ok := c.ModelToNode[cl.BoneID]
				if !ok {
					continue
				}
				joints = append(joints, j)
				invmats = append(invmats, inverseBindMatrix(cl, c.Scale))
			}
			if len(joints) == 0 {
				continue
			}
			c.Skins = append(c.Skins, &gltf.Skin{
				Name:                objectName(tn.Name()),
				Joints:              joints,
				InverseBindMatrices: gltf.Index(c.addMatrices(invmats)),
			})
		}
		return true
	})
	return errs.Return()
}

// Convert builds a glTF skeleton from the scene tree of doc. Models that fail
// to decode are left out and reported in the returned error together with the
// document.
func (c *fbxToGltf) Convert(doc *fbx.Document) (*gltf.Document, error) {
	c.src = doc
	root, err := doc.RootNode()
	if err != nil {
		return nil, err
	}

	var errs fbx.Errors
	models, err := doc.Models()
	errs = errs.Append(err)
	for _, m := range models {
		c.models[m.ID] = m
	}

	c.addModelNodes(root, nil)
	if !c.IgnoreSkin {
		errs = errs.Append(c.addSkins(root))
	}
	if !c.IgnoreAnimation {
		errs = errs.Append(c.addAnimations())
	}
	return c.Document, fbx.Union(errs...)
}
