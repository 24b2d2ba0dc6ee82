package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/san-kum/springsim/internal/viz"
)

// SVG writes a vector snapshot of s, seen through cam, as a width x height
// SVG document. Springs carrying at most the mean load are dashed, the same
// convention the terminal view uses.
func SVG(w io.Writer, s viz.Scene, cam *viz.Camera, opts viz.SceneOptions, theme viz.Theme, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("svg size %dx%d must be positive", width, height)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	pos := s.Positions()
	screen := make([][2]int, len(pos))
	for i, p := range pos {
		x, y, _ := cam.Project(p, width, height)
		screen[i] = [2]int{x, y}
	}

	springs := s.Springs()
	forces, mean := viz.SpringLoads(s)

	fmt.Fprintf(bw, "<g stroke=%q stroke-width=\"1\">\n", string(theme.Mesh))
	for i, sp := range springs {
		if !opts.Shows(sp.Kind) || sp.A >= len(screen) || sp.B >= len(screen) {
			continue
		}
		a, b := screen[sp.A], screen[sp.B]
		dash := ""
		if forces != nil && forces[i] <= mean {
			dash = ` stroke-dasharray="2,3"`
		}
		fmt.Fprintf(bw, "<line x1=\"%d\" y1=\"%d\" x2=\"%d\" y2=\"%d\"%s/>\n", a[0], a[1], b[0], b[1], dash)
	}
	bw.WriteString("</g>\n")

	fmt.Fprintf(bw, "<g fill=%q>\n", string(theme.Accent))
	for i, p := range screen {
		r := 2
		if s.Pinned(i) {
			r = 4
		}
		fmt.Fprintf(bw, "<circle cx=\"%d\" cy=\"%d\" r=\"%d\"/>\n", p[0], p[1], r)
	}
	bw.WriteString("</g>\n</svg>\n")

	return bw.Flush()
}
