package component

import "math"

type Vec3 [3]float64

// Quat is a rotation quaternion in x, y, z, w order.
type Quat [4]float64

var (
	IdentityQuat = Quat{0, 0, 0, 1}
	OneVec3      = Vec3{1, 1, 1}
)

type Transform struct {
	Position Vec3 `json:"position"`
	Rotation Quat `json:"rotation"`
	Scale    Vec3 `json:"scale"`
}

// DefaultTransform is the origin with no rotation and unit scale.
func DefaultTransform() Transform {
	return Transform{Rotation: IdentityQuat, Scale: OneVec3}
}

func (v Vec3) Finite() bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func (q Quat) Finite() bool {
	for _, c := range q {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Normalized returns q scaled to unit length. A zero quaternion becomes identity.
func (q Quat) Normalized() Quat {
	n := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if n == 0 {
		return IdentityQuat
	}
	return Quat{q[0] / n, q[1] / n, q[2] / n, q[3] / n}
}
