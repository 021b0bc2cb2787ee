package grid

// Direction is one of the four cardinal facings used by window tiles and
// actor orientation.
type Direction uint8

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// Angle returns the facing in degrees. Zero points along positive X and
// angles grow clockwise with Y pointing down, matching the ray caster.
func (d Direction) Angle() float64 {
	switch d {
	case DirUp:
		return 270
	case DirDown:
		return 90
	case DirLeft:
		return 180
	default:
		return 0
	}
}

// Vector returns the unit vector for the facing.
func (d Direction) Vector() (float64, float64) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	default:
		return 1, 0
	}
}

// Opposite returns the reversed facing.
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	default:
		return DirLeft
	}
}

// ParseDirection maps a wire facing string to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "up":
		return DirUp, true
	case "down":
		return DirDown, true
	case "left":
		return DirLeft, true
	case "right":
		return DirRight, true
	default:
		return DirDown, false
	}
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	default:
		return "right"
	}
}
