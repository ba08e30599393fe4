package sandbox

import (
	"image/color"

	"github.com/san-kum/granular/internal/world"
)

// Colours shared by every front end.
var (
	Background  = color.RGBA{10, 10, 12, 255}
	Text        = color.RGBA{240, 240, 240, 255}
	ButtonFill  = color.RGBA{60, 60, 70, 255}
	Input       = color.RGBA{40, 40, 44, 255}
	InputActive = color.RGBA{70, 70, 76, 255}
	EmitterMark = color.RGBA{255, 70, 70, 255}
	Barrier     = color.RGBA{180, 180, 180, 255}
	SandA       = color.RGBA{215, 195, 120, 255}
	SandB       = color.RGBA{190, 170, 100, 255}
)

func TagColor(t world.Tag) color.RGBA {
	switch t {
	case world.TagSandA:
		return SandA
	case world.TagSandB:
		return SandB
	}
	return Barrier
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	const digits = "0123456789abcdef"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []uint8{c.R, c.G, c.B} {
		b[1+2*i] = digits[v>>4]
		b[2+2*i] = digits[v&0x0f]
	}
	return string(b)
}
