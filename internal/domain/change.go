package domain

// PercentChange returns the relative change from r1 to r2 in percent.
// A zero base yields 0 rather than dividing; real currency rates are
// never zero but a degenerate sample must not crash the display.
func PercentChange(r1, r2 float64) float64 {
	if r1 == 0 {
		return 0
	}
	return (r2 - r1) / r1 * 100
}

// Direction classifies a change for display purposes. Mainland boards
// color rises red and falls green; that mapping lives in the renderers.
type Direction int

const (
	Flat Direction = iota
	Up
	Down
)

func DirectionOf(delta float64) Direction {
	switch {
	case delta > 0:
		return Up
	case delta < 0:
		return Down
	default:
		return Flat
	}
}

// Arrow returns the board symbol for the direction.
func (d Direction) Arrow() string {
	switch d {
	case Up:
		return "▲"
	case Down:
		return "▼"
	default:
		return "–"
	}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "flat"
	}
}
