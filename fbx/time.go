package fbx

// Time is a point in time in FBX units.
type Time int64

const (
	UnitsPerSecond Time = 46186158000

	// unitsPerFrame is one frame at 30 fps.
	unitsPerFrame Time = 1539538600

	TimeZero     Time = 0
	TimeInfinite Time = 0x7fffffffffffffff
)

func (t Time) Seconds() float64 {
	return float64(t) / float64(UnitsPerSecond)
}

// Frames returns the number of whole frames at 30 fps.
func (t Time) Frames() int64 {
	return int64(t / unitsPerFrame)
}

// FramesAt returns the frame index at the given rate.
func (t Time) FramesAt(fps float64) float64 {
	return t.Seconds() * fps
}

func TimeFromSeconds(s float64) Time {
	return Time(s * float64(UnitsPerSecond))
}
