package hxpager

import "strings"

// Direction is the navigation direction of a page change.
type Direction int

const (
	Forward Direction = iota
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// SpineLocation is where the host places the spine between pages. hxpager
// treats it as an opaque value and only stores and forwards it.
type SpineLocation int

const (
	SpineNone SpineLocation = iota
	SpineMin
	SpineMid
	SpineMax
)

func (s SpineLocation) String() string {
	switch s {
	case SpineMin:
		return "min"
	case SpineMid:
		return "mid"
	case SpineMax:
		return "max"
	default:
		return "none"
	}
}

// Orientation is a display orientation.
type Orientation int

const (
	OrientationUnknown Orientation = iota
	OrientationPortrait
	OrientationPortraitUpsideDown
	OrientationLandscapeLeft
	OrientationLandscapeRight
)

func (o Orientation) String() string {
	switch o {
	case OrientationPortrait:
		return "portrait"
	case OrientationPortraitUpsideDown:
		return "portrait-upside-down"
	case OrientationLandscapeLeft:
		return "landscape-left"
	case OrientationLandscapeRight:
		return "landscape-right"
	default:
		return "unknown"
	}
}

// OrientationMask is a set of orientations.
type OrientationMask uint

const (
	OrientationMaskPortrait OrientationMask = 1 << iota
	OrientationMaskPortraitUpsideDown
	OrientationMaskLandscapeLeft
	OrientationMaskLandscapeRight

	OrientationMaskLandscape = OrientationMaskLandscapeLeft | OrientationMaskLandscapeRight
	OrientationMaskAll       = OrientationMaskPortrait | OrientationMaskPortraitUpsideDown | OrientationMaskLandscape
)

// Contains reports whether o is in the mask.
func (m OrientationMask) Contains(o Orientation) bool {
	if o == OrientationUnknown {
		return false
	}
	return m&(1<<(o-1)) != 0
}

func (m OrientationMask) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	for o := OrientationPortrait; o <= OrientationLandscapeRight; o++ {
		if m.Contains(o) {
			parts = append(parts, o.String())
		}
	}
	return strings.Join(parts, "|")
}
