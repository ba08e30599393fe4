package store

import (
	"fmt"
	"strings"

	"github.com/san-kum/granular/internal/config"
	"github.com/san-kum/granular/internal/sandbox"
	"github.com/san-kum/granular/internal/world"
)

// SceneToSVG draws a snapshot at the given scale: boundaries, user segments
// and grains in their sand colours.
func SceneToSVG(sc *Scene, scale float64) string {
	if sc == nil {
		return ""
	}
	if scale <= 0 {
		scale = 1
	}

	width := sc.Width * scale
	height := sc.Height * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, sandbox.Hex(sandbox.Background))

	fmt.Fprintf(&sb, `<g stroke="%s" stroke-linecap="round">
`, sandbox.Hex(sandbox.Barrier))
	// floor and walls
	fmt.Fprintf(&sb, `<path fill="none" stroke-width="%.1f" d="M0,%.1f L%.1f,%.1f M0,0 L0,%.1f M%.1f,0 L%.1f,%.1f"/>
`, scale, height-scale, width, height-scale, height, width-scale, width-scale, height)
	for _, s := range sc.Segments {
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke-width="%.1f"/>
`, s.AX*scale, s.AY*scale, s.BX*scale, s.BY*scale, max(s.Thickness, 1)*scale)
	}
	sb.WriteString("</g>\n")

	r := sc.Radius
	if r <= 0 {
		r = config.DefaultRadius
	}
	r *= scale
	for _, tag := range []world.Tag{world.TagSandA, world.TagSandB} {
		fmt.Fprintf(&sb, `<g fill="%s">
`, sandbox.Hex(sandbox.TagColor(tag)))
		for _, g := range sc.Grains {
			if world.Tag(g.Tag) != tag {
				continue
			}
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, g.X*scale, g.Y*scale, r)
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// SeriesToSVG plots a telemetry series as a polyline scaled to fit.
func SeriesToSVG(xs, ys []float64, width, height int, strokeColor string) string {
	n := min(len(xs), len(ys))
	if n < 2 {
		return ""
	}

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := 0; i < n; i++ {
		minX, maxX = min(minX, xs[i]), max(maxX, xs[i])
		minY, maxY = min(minY, ys[i]), max(maxY, ys[i])
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, sandbox.Hex(sandbox.Background), strokeColor)

	for i := 0; i < n; i++ {
		x := (xs[i] - minX) / rangeX * float64(width)
		y := float64(height) - (ys[i]-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
