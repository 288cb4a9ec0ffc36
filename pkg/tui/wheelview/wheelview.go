// Package wheelview draws the selection wheel as terminal cells.
package wheelview

import (
	"math"
	"strings"

	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss/v2"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/anispin/pkg/wheel"
)

const (
	empty = -1
	block = "█"
)

// Palette returns n segment colors spread evenly around the hue circle.
// Neighbouring segments alternate lightness so they stay distinguishable
// when n is large.
func Palette(n int) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		l := 0.65
		if i%2 == 1 {
			l = 0.5
		}
		out[i] = colorful.Hcl(float64(i)*wheel.FullTurn/float64(n), 0.55, l).Clamped().Hex()
	}
	return out
}

// Cells maps every character cell of a disc with the given radius to the
// segment index under it, or -1 outside the disc. Columns are doubled so
// the disc looks round in a terminal.
func Cells(radius int, rotation float64, n int) [][]int {
	rows := make([][]int, 0, 2*radius+1)
	var span float64
	if n > 0 {
		span = wheel.SegmentAngle(n)
	}
	limit := float64(radius*radius) + float64(radius)/2
	for y := -radius; y <= radius; y++ {
		row := make([]int, 0, 4*radius+1)
		for x := -2 * radius; x <= 2*radius; x++ {
			fx := float64(x) / 2
			fy := float64(y)
			if n == 0 || fx*fx+fy*fy > limit {
				row = append(row, empty)
				continue
			}
			theta := math.Atan2(fy, fx) * 180 / math.Pi
			angle := wheel.Normalize(theta - rotation)
			row = append(row, int(angle/span)%n)
		}
		rows = append(rows, row)
	}
	return rows
}

// Disc renders Cells with one color per segment.
func Disc(radius int, rotation float64, colors []string) string {
	cells := Cells(radius, rotation, len(colors))
	styles := make([]lipgloss.Style, len(colors))
	for i, c := range colors {
		styles[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	}

	var b strings.Builder
	for y, row := range cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < len(row); {
			idx := row[x]
			run := 1
			for x+run < len(row) && row[x+run] == idx {
				run++
			}
			if idx == empty {
				b.WriteString(strings.Repeat(" ", run))
			} else {
				b.WriteString(styles[idx].Render(strings.Repeat(block, run)))
			}
			x += run
		}
	}
	return b.String()
}

// Label fits a segment title into width cells.
func Label(title string, width int) string {
	if width <= 0 {
		return ""
	}
	return truncate.StringWithTail(title, uint(width), "…")
}

// Pointer is the flap above the wheel. Each segment crossing knocks it
// sideways and a damped spring brings it back.
type Pointer struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
}

// KickDistance is how far, in cells, a crossing pushes the flap.
const KickDistance = 2.0

// NewPointer builds a pointer stepped at fps frames per second.
func NewPointer(fps int) Pointer {
	return Pointer{spring: harmonica.NewSpring(harmonica.FPS(fps), 8.0, 0.35)}
}

// Kick deflects the pointer in the spin direction.
func (p *Pointer) Kick() {
	p.pos = KickDistance
}

// Step advances the spring one frame.
func (p *Pointer) Step() {
	p.pos, p.vel = p.spring.Update(p.pos, p.vel, 0)
}

// Offset is the current deflection in whole cells.
func (p Pointer) Offset() int {
	return int(math.Round(p.pos))
}

// Settled reports whether the flap is back at rest.
func (p Pointer) Settled() bool {
	return math.Abs(p.pos) < 0.05 && math.Abs(p.vel) < 0.05
}

// Render draws the pointer row for a disc of the given radius.
func (p Pointer) Render(radius int, style lipgloss.Style) string {
	width := 4*radius + 1
	col := 2*radius + p.Offset()
	if col < 0 {
		col = 0
	}
	if col >= width {
		col = width - 1
	}
	return strings.Repeat(" ", col) + style.Render("▼")
}
