package panel

import "einkscreen/pkg/proto"

// UpdateMode is the session's view of the controller mode. It extends
// the hardware mode set with Sleeping, which the controller reaches
// through a separate deep-sleep command rather than a mode value.
type UpdateMode int

const (
	Full UpdateMode = iota
	Partial
	BaseMap
	Sleeping
)

func (m UpdateMode) String() string {
	switch m {
	case Full:
		return "full"
	case Partial:
		return "partial"
	case BaseMap:
		return "base_map"
	case Sleeping:
		return "sleeping"
	default:
		return "unknown"
	}
}

// hw maps the mode to its driver encoding. Sleeping has none.
func (m UpdateMode) hw() (proto.Mode, bool) {
	switch m {
	case Full:
		return proto.ModeFull, true
	case Partial:
		return proto.ModePartial, true
	case BaseMap:
		return proto.ModeBaseMap, true
	default:
		return 0, false
	}
}

// canEnter reports whether a transition to next may be requested. A
// sleeping panel accepts nothing but a wake back to Full.
func (m UpdateMode) canEnter(next UpdateMode) bool {
	if m == Sleeping {
		return next == Full
	}
	return true
}
