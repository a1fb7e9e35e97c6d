package renderer

import (
	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/mobsim/components"
)

var statusStyle = tcell.StyleDefault.Bold(true)

type glyph struct {
	r     rune
	style tcell.Style
}

var speciesGlyphs = map[components.Species]glyph{
	components.SpeciesCreeper:  {'C', tcell.StyleDefault.Foreground(tcell.ColorLime)},
	components.SpeciesZombie:   {'Z', tcell.StyleDefault.Foreground(tcell.ColorTeal)},
	components.SpeciesCow:      {'c', tcell.StyleDefault.Foreground(tcell.ColorSaddleBrown)},
	components.SpeciesPig:      {'p', tcell.StyleDefault.Foreground(tcell.ColorPink)},
	components.SpeciesVillager: {'v', tcell.StyleDefault.Foreground(tcell.ColorYellow)},
}

// mobGlyph returns the rune and style of a mob. Diseased mobs are drawn
// reversed.
func mobGlyph(m *components.Mob) (rune, tcell.Style) {
	g, ok := speciesGlyphs[m.Species]
	if !ok {
		g = glyph{'?', tcell.StyleDefault}
	}
	if m.Diseased {
		return g.r, g.style.Reverse(true)
	}
	return g.r, g.style
}

// plantGlyph returns the rune and style of a plant; eaten grass is dimmed.
func plantGlyph(p *components.Plant) (rune, tcell.Style) {
	if p.Seed {
		return '.', tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)
	}
	return '"', tcell.StyleDefault.Foreground(tcell.ColorGreen)
}
