package converter

import (
	"sort"

	"github.com/binzume/fbxreader/fbx"
	"github.com/binzume/fbxreader/geom"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

var channelPaths = map[string]gltf.TRSProperty{
	"Lcl Translation": gltf.TRSTranslation,
	"Lcl Rotation":    gltf.TRSRotation,
	"Lcl Scaling":     gltf.TRSScale,
}

var axisLabels = [3]string{"d|X", "d|Y", "d|Z"}

func keysEquals(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if v != b[i] {
			return false
		}
	}
	return true
}

// mergeKeyTimes returns the sorted union of the key times of curves.
func mergeKeyTimes(curves []*fbx.AnimCurve) []fbx.Time {
	seen := map[fbx.Time]bool{}
	var times []fbx.Time
	for _, c := range curves {
		if c == nil {
			continue
		}
		for _, t := range c.KeyTime {
			if !seen[t] {
				seen[t] = true
				times = append(times, t)
			}
		}
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	return times
}

// evaluateCurve interpolates c linearly at t, holding the first and last keys.
func evaluateCurve(c *fbx.AnimCurve, t fbx.Time) float32 {
	n := len(c.KeyTime)
	if len(c.KeyValueFloat) < n {
		n = len(c.KeyValueFloat)
	}
	if n == 0 {
		return float32(c.Default)
	}
	i := sort.Search(n, func(i int) bool { return c.KeyTime[i] >= t })
	if i == 0 {
		return c.KeyValueFloat[0]
	}
	if i == n {
		return c.KeyValueFloat[n-1]
	}
	t0, t1 := c.KeyTime[i-1], c.KeyTime[i]
	v0, v1 := c.KeyValueFloat[i-1], c.KeyValueFloat[i]
	f := float32(float64(t-t0) / float64(t1-t0))
	return v0 + (v1-v0)*f
}

type channelSampler struct {
	curves [3]*fbx.AnimCurve
	values [3]float32
}

func newChannelSampler(cn *fbx.AnimCurveNode) *channelSampler {
	s := &channelSampler{values: cn.Value()}
	for i, label := range axisLabels {
		s.curves[i] = cn.Curves[label]
	}
	return s
}

func (s *channelSampler) sample(t fbx.Time) *geom.Vector3 {
	var v [3]float32
	for i, c := range s.curves {
		if c != nil {
			v[i] = evaluateCurve(c, t)
		} else {
			v[i] = s.values[i]
		}
	}
	return &geom.Vector3{X: v[0], Y: v[1], Z: v[2]}
}

type animBuilder struct {
	*fbxToGltf
	anim        *gltf.Animation
	prevKeys    []float32
	prevKeysAcc uint32
}

func (b *animBuilder) keysAccessor(times []fbx.Time) uint32 {
	keys := make([]float32, len(times))
	for i, t := range times {
		keys[i] = float32(t.Seconds())
	}
	if b.prevKeys != nil && keysEquals(keys, b.prevKeys) {
		return b.prevKeysAcc
	}
	b.prevKeys = keys
	b.prevKeysAcc = modeler.WriteAccessor(b.Document, gltf.TargetArrayBuffer, keys)
	return b.prevKeysAcc
}

func (b *animBuilder) addChannel(node uint32, path gltf.TRSProperty, keysAcc, samplesAcc uint32) {
	b.anim.Samplers = append(b.anim.Samplers, &gltf.AnimationSampler{
		Input:         gltf.Index(keysAcc),
		Output:        gltf.Index(samplesAcc),
		Interpolation: gltf.InterpolationLinear,
	})
	b.anim.Channels = append(b.anim.Channels, &gltf.Channel{
		Sampler: gltf.Index(uint32(len(b.anim.Samplers) - 1)),
		Target: gltf.ChannelTarget{
			Node: gltf.Index(node),
			Path: path,
		},
	})
}

// addCurveNode converts one curve node for every model it is connected to
// through a Lcl property edge.
func (b *animBuilder) addCurveNode(cn *fbx.AnimCurveNode) {
	s := newChannelSampler(cn)
	times := mergeKeyTimes(s.curves[:])
	if len(times) == 0 {
		return
	}
	for _, pid := range cn.ParentIDs {
		label, _ := b.src.ConnectionType(cn.ID, pid)
		path, ok := channelPaths[label]
		if !ok {
			continue
		}
		node, ok := b.ModelToNode[pid]
		if !ok {
			continue
		}
		model := *b.models[pid]

		var samplesAcc uint32
		switch path {
		case gltf.TRSRotation:
			rotations := make([][4]float32, len(times))
			for i, t := range times {
				model.LclRotation = *s.sample(t)
				q := model.Rotation()
				rotations[i] = [4]float32{q.X, q.Y, q.Z, q.W}
			}
			samplesAcc = modeler.WriteTangent(b.Document, rotations)
		case gltf.TRSTranslation:
			translations := make([][3]float32, len(times))
			for i, t := range times {
				b.scaled(s.sample(t)).ToArray(translations[i][:])
			}
			samplesAcc = modeler.WritePosition(b.Document, translations)
		default:
			scales := make([][3]float32, len(times))
			for i, t := range times {
				s.sample(t).ToArray(scales[i][:])
			}
			samplesAcc = modeler.WritePosition(b.Document, scales)
		}
		b.addChannel(node, path, b.keysAccessor(times), samplesAcc)
	}
}

func (c *fbxToGltf) scaled(v *geom.Vector3) *geom.Vector3 {
	return v.Scale(c.FBXToGLTFOption.Scale)
}

func (c *fbxToGltf) addAnimations() error {
	stacks, err := c.src.AnimationStacks()
	for _, stack := range stacks {
		b := &animBuilder{fbxToGltf: c, anim: &gltf.Animation{Name: objectName(stack.Name)}}
		for _, layer := range stack.Layers {
			for _, cn := range layer.CurveNodes {
				b.addCurveNode(cn)
			}
		}
		if len(b.anim.Channels) > 0 {
			c.Animations = append(c.Animations, b.anim)
		}
	}
	return err
}
