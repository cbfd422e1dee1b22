package connectivity

// State is the connectivity NetworkManager reports for the host.
type State uint32

const (
	Unknown State = iota
	None
	Portal
	Limited
	Full
)

func (s State) String() string {
	switch s {
	case Unknown:
		return "unknown"
	case None:
		return "none"
	case Portal:
		return "portal"
	case Limited:
		return "limited"
	case Full:
		return "full"
	default:
		return "invalid"
	}
}
