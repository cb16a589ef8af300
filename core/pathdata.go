package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// PathCommand is one absolute segment of an SVG path: M, L, C, Q or Z.
type PathCommand struct {
	Op     byte
	Points []Point
}

// ParsePathData parses SVG path data into absolute M/L/C/Q/Z commands.
// Supported input commands are M, L, H, V, C, Q and Z in both cases.
func ParsePathData(d string) ([]PathCommand, error) {
	tokens := tokenizePath(d)
	var (
		cmds       []PathCommand
		cur, start Point
		op         byte
		i          int
	)
	next := func() (float64, error) {
		if i >= len(tokens) {
			return 0, fmt.Errorf("path data: unexpected end after %q", string(op))
		}
		f, err := strconv.ParseFloat(tokens[i], 64)
		if err != nil {
			return 0, fmt.Errorf("path data: bad number %q", tokens[i])
		}
		i++
		return f, nil
	}
	point := func(rel bool) (Point, error) {
		x, err := next()
		if err != nil {
			return Point{}, err
		}
		y, err := next()
		if err != nil {
			return Point{}, err
		}
		if rel {
			return Point{X: cur.X + x, Y: cur.Y + y}, nil
		}
		return Point{X: x, Y: y}, nil
	}

	for i < len(tokens) {
		if t := tokens[i]; len(t) == 1 && unicode.IsLetter(rune(t[0])) {
			op = t[0]
			i++
		} else if op == 0 {
			return nil, fmt.Errorf("path data: missing command before %q", t)
		}
		rel := op >= 'a' && op <= 'z'
		switch unicode.ToUpper(rune(op)) {
		case 'M':
			p, err := point(rel)
			if err != nil {
				return nil, err
			}
			cmds = append(cmds, PathCommand{Op: 'M', Points: []Point{p}})
			cur, start = p, p
			// Subsequent pairs are implicit line-tos.
			if rel {
				op = 'l'
			} else {
				op = 'L'
			}
		case 'L':
			p, err := point(rel)
			if err != nil {
				return nil, err
			}
			cmds = append(cmds, PathCommand{Op: 'L', Points: []Point{p}})
			cur = p
		case 'H':
			x, err := next()
			if err != nil {
				return nil, err
			}
			if rel {
				x += cur.X
			}
			cur = Point{X: x, Y: cur.Y}
			cmds = append(cmds, PathCommand{Op: 'L', Points: []Point{cur}})
		case 'V':
			y, err := next()
			if err != nil {
				return nil, err
			}
			if rel {
				y += cur.Y
			}
			cur = Point{X: cur.X, Y: y}
			cmds = append(cmds, PathCommand{Op: 'L', Points: []Point{cur}})
		case 'C':
			var pts [3]Point
			for k := range pts {
				p, err := point(rel)
				if err != nil {
					return nil, err
				}
				pts[k] = p
			}
			cmds = append(cmds, PathCommand{Op: 'C', Points: pts[:]})
			cur = pts[2]
		case 'Q':
			var pts [2]Point
			for k := range pts {
				p, err := point(rel)
				if err != nil {
					return nil, err
				}
				pts[k] = p
			}
			cmds = append(cmds, PathCommand{Op: 'Q', Points: pts[:]})
			cur = pts[1]
		case 'Z':
			cmds = append(cmds, PathCommand{Op: 'Z'})
			cur = start
			op = 0
		default:
			return nil, fmt.Errorf("path data: unsupported command %q", string(op))
		}
	}
	return cmds, nil
}

// PathBounds returns the box around every point of cmds, control points included.
func PathBounds(cmds []PathCommand) Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range cmds {
		for _, p := range c.Points {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
	}
	if math.IsInf(minX, 1) {
		return Rect{}
	}
	return Rect{Left: minX, Top: minY, Width: maxX - minX, Height: maxY - minY}
}

func tokenizePath(d string) []string {
	var (
		tokens []string
		b      strings.Builder
	)
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	for idx, r := range d {
		switch {
		case r == ',' || unicode.IsSpace(r):
			flush()
		case r == '-' && b.Len() > 0 && !strings.HasSuffix(b.String(), "e"):
			flush()
			b.WriteRune(r)
		case unicode.IsLetter(r) && r != 'e' && r != 'E':
			flush()
			tokens = append(tokens, d[idx:idx+1])
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return tokens
}
