package geom

import (
	"math"
	"testing"
)

func TestDecomposeMatrix(t *testing.T) {
	const eps = 0.00001

	pos := NewVector3(1, 2, 3)
	rot := NewEuler(10*math.Pi/180, 20*math.Pi/180, 30*math.Pi/180, RotationOrderZXY).ToQuaternion()
	scale := NewVector3(1.5, 1.6, 1.7)

	mat := NewTRSMatrix4(pos, rot, scale)
	pos1, rot1, scale1 := mat.Decompose()

	if pos.Sub(pos1).Len() > eps {
		t.Error("pos: ", pos, pos1)
	}
	if rot.Sub(rot1).Len() > eps {
		t.Error("rot: ", rot, rot1)
	}
	if scale.Sub(scale1).Len() > eps {
		t.Error("scale: ", scale, scale1)
	}

	mat2 := NewRotationMatrix4FromQuaternion(rot)
	pos1, rot1, scale1 = mat2.Decompose()
	if rot.Sub(rot1).Len() > eps {
		t.Error("rot: ", rot, rot1)
	}
	if pos1.Len() > eps {
		t.Error("pos: ", pos1)
	}
	if scale1.Sub(NewVector3(1, 1, 1)).Len() > eps {
		t.Error("scale: ", scale1)
	}
}

func TestMatrixMulInverse(t *testing.T) {
	const eps = 0.00001

	rot := NewEuler(0.1, 0.2, 0.3, RotationOrderXYZ).ToQuaternion()
	mat := NewTRSMatrix4(NewVector3(4, 5, 6), rot, NewVector3(2, 2, 2))

	if !mat.Mul(mat.Inverse()).ApproxEquals(NewMatrix4(), eps) {
		t.Error("m * inv(m) != I", mat.Mul(mat.Inverse()))
	}
	if !mat.Transposed().Transposed().ApproxEquals(mat, 0) {
		t.Error("transpose twice")
	}

	tm := NewTranslateMatrix4(1, 2, 3)
	sm := NewScaleMatrix4(2, 3, 4)
	v := tm.Mul(sm).ApplyTo(NewVector3(1, 1, 1))
	if *v != *NewVector3(3, 5, 7) {
		t.Error("T*S applied: ", v)
	}
	if (&Matrix4{}).Inverse().IsIdentity() {
		t.Error("singular inverse")
	}
	if !NewMatrix4().IsIdentity() {
		t.Error("identity")
	}
}

func TestMatrixFromFloat64(t *testing.T) {
	m := NewMatrix4FromFloat64([]float64{1, 2, 3})
	if m[0] != 1 || m[2] != 3 || m[3] != 0 || m[15] != 0 {
		t.Error("NewMatrix4FromFloat64: ", m)
	}
}
