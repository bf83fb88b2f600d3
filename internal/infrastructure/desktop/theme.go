package desktop

import "image/color"

// Theme is the board palette. Up and Down follow the mainland board
// convention: red marks a rise, green a fall.
type Theme struct {
	Name       string
	Background color.RGBA
	Panel      color.RGBA
	Text       color.RGBA
	Muted      color.RGBA
	Accent     color.RGBA
	Grid       color.RGBA
	Up         color.RGBA
	Down       color.RGBA
	Flat       color.RGBA
}

var Dark = Theme{
	Name:       "dark",
	Background: color.RGBA{R: 16, G: 20, B: 24, A: 255},
	Panel:      color.RGBA{R: 30, G: 36, B: 42, A: 255},
	Text:       color.RGBA{R: 230, G: 230, B: 230, A: 255},
	Muted:      color.RGBA{R: 140, G: 148, B: 156, A: 255},
	Accent:     color.RGBA{R: 230, G: 162, B: 60, A: 255},
	Grid:       color.RGBA{R: 52, G: 60, B: 68, A: 255},
	Up:         color.RGBA{R: 255, G: 61, B: 61, A: 255},
	Down:       color.RGBA{R: 0, G: 200, B: 83, A: 255},
	Flat:       color.RGBA{R: 143, G: 143, B: 143, A: 255},
}

var Light = Theme{
	Name:       "light",
	Background: color.RGBA{R: 250, G: 250, B: 250, A: 255},
	Panel:      color.RGBA{R: 236, G: 238, B: 240, A: 255},
	Text:       color.RGBA{R: 26, G: 26, B: 26, A: 255},
	Muted:      color.RGBA{R: 110, G: 116, B: 122, A: 255},
	Accent:     color.RGBA{R: 202, G: 134, B: 34, A: 255},
	Grid:       color.RGBA{R: 212, G: 216, B: 220, A: 255},
	Up:         color.RGBA{R: 239, G: 35, B: 42, A: 255},
	Down:       color.RGBA{R: 20, G: 177, B: 67, A: 255},
	Flat:       color.RGBA{R: 143, G: 143, B: 143, A: 255},
}

// ThemeByName falls back to Dark for unknown names.
func ThemeByName(name string) Theme {
	if name == "light" {
		return Light
	}
	return Dark
}

func (t Theme) other() Theme {
	if t.Name == "dark" {
		return Light
	}
	return Dark
}

func (t Theme) changeColor(pct float64) color.RGBA {
	switch {
	case pct > 0:
		return t.Up
	case pct < 0:
		return t.Down
	default:
		return t.Flat
	}
}
