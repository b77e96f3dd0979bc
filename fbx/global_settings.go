package fbx

type TimeMode int

const (
	TimeModeDefault TimeMode = iota
	TimeModeFrames120
	TimeModeFrames100
	TimeModeFrames60
	TimeModeFrames50
	TimeModeFrames48
	TimeModeFrames30
	TimeModeFrames30Drop
	TimeModeNTSCDropFrame
	TimeModeNTSCFullFrame
	TimeModePAL
	TimeModeFrames24
	TimeModeFrames1000
	TimeModeFilmFullFrame
	TimeModeCustom
	TimeModeFrames96
	TimeModeFrames72
	TimeModeFrames59dot94
	TimeModeModesCount
)

var timeModeRates = [...]float64{
	TimeModeDefault:       30,
	TimeModeFrames120:     120,
	TimeModeFrames100:     100,
	TimeModeFrames60:      60,
	TimeModeFrames50:      50,
	TimeModeFrames48:      48,
	TimeModeFrames30:      30,
	TimeModeFrames30Drop:  30,
	TimeModeNTSCDropFrame: 29.97002617,
	TimeModeNTSCFullFrame: 29.97002617,
	TimeModePAL:           25,
	TimeModeFrames24:      24,
	TimeModeFrames1000:    1000,
	TimeModeFilmFullFrame: 23.976,
	TimeModeFrames96:      96,
	TimeModeFrames72:      72,
	TimeModeFrames59dot94: 59.94,
}

// FrameRate returns frames per second. custom is used for TimeModeCustom.
// Unknown modes return 0.
func (m TimeMode) FrameRate(custom float64) float64 {
	if m == TimeModeCustom {
		return custom
	}
	if m < 0 || int(m) >= len(timeModeRates) {
		return 0
	}
	return timeModeRates[m]
}

// GlobalSettings holds the scene-wide axis, unit and time settings.
type GlobalSettings struct {
	Version                 int
	UpAxis                  int
	UpAxisSign              int
	FrontAxis               int
	FrontAxisSign           int
	CoordAxis               int
	CoordAxisSign           int
	OriginalUpAxis          int
	OriginalUpAxisSign      int
	UnitScaleFactor         float64
	OriginalUnitScaleFactor float64
	TimeMode                TimeMode
	CustomFrameRate         float64
}

// NewGlobalSettings reads a "GlobalSettings" node. A nil node gives zero settings.
func NewGlobalSettings(node *Node) (*GlobalSettings, error) {
	gs := &GlobalSettings{}
	if node == nil {
		return gs, nil
	}
	if v := node.FindChild("Version"); v != nil {
		n, err := v.Prop(0).Int64()
		if err != nil {
			return nil, PropertyError{Node: "Version", Cause: err}
		}
		gs.Version = int(n)
	}

	ints := map[string]*int{
		"UpAxis":             &gs.UpAxis,
		"UpAxisSign":         &gs.UpAxisSign,
		"FrontAxis":          &gs.FrontAxis,
		"FrontAxisSign":      &gs.FrontAxisSign,
		"CoordAxis":          &gs.CoordAxis,
		"CoordAxisSign":      &gs.CoordAxisSign,
		"OriginalUpAxis":     &gs.OriginalUpAxis,
		"OriginalUpAxisSign": &gs.OriginalUpAxisSign,
	}
	floats := map[string]*float64{
		"UnitScaleFactor":         &gs.UnitScaleFactor,
		"OriginalUnitScaleFactor": &gs.OriginalUnitScaleFactor,
		"CustomFrameRate":         &gs.CustomFrameRate,
	}

	for _, p := range node.Properties70() {
		name := p.PropString(0)
		if v, ok := ints[name]; ok {
			n, err := p.Prop(4).Int64()
			if err != nil {
				return nil, PropertyError{Node: node.Name, Name: name, Index: 4, Cause: err}
			}
			*v = int(n)
		} else if v, ok := floats[name]; ok {
			f, err := p.Prop(4).Float64()
			if err != nil {
				return nil, PropertyError{Node: node.Name, Name: name, Index: 4, Cause: err}
			}
			*v = f
		} else if name == "TimeMode" {
			n, err := p.Prop(4).Int64()
			if err != nil {
				return nil, PropertyError{Node: node.Name, Name: name, Index: 4, Cause: err}
			}
			gs.TimeMode = TimeMode(n)
		}
	}
	return gs, nil
}

func (doc *Document) GlobalSettings() (*GlobalSettings, error) {
	return doc.globalSettings.get(func() (*GlobalSettings, error) {
		return NewGlobalSettings(doc.FindChild("GlobalSettings"))
	})
}
