package scene

import (
	"strconv"
	"strings"

	"github.com/gogpu/gg"
	"golang.org/x/image/colornames"
)

// ParseColor understands hex, rgb()/rgba() and CSS color names.
func ParseColor(s string) (gg.RGBA, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "":
		return gg.RGBA{}, false
	case s == "transparent":
		return gg.RGBA{}, true
	case strings.HasPrefix(s, "#"):
		switch len(s) {
		case 4, 5, 7, 9:
			if _, err := strconv.ParseUint(s[1:], 16, 32); err != nil {
				return gg.RGBA{}, false
			}
			return gg.Hex(s), true
		}
		return gg.RGBA{}, false
	case strings.HasPrefix(s, "rgb"):
		return parseRGBFunc(s)
	}
	if c, ok := colornames.Map[s]; ok {
		return gg.FromColor(c), true
	}
	return gg.RGBA{}, false
}

func parseRGBFunc(s string) (gg.RGBA, bool) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return gg.RGBA{}, false
	}
	parts := strings.Split(s[open+1:end], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return gg.RGBA{}, false
	}
	var v [4]float64
	v[3] = 1
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return gg.RGBA{}, false
		}
		if i < 3 {
			f /= 255
		}
		v[i] = clamp01(f)
	}
	return gg.RGBA2(v[0], v[1], v[2], v[3]), true
}

func withAlpha(c gg.RGBA, alpha float64) gg.RGBA {
	c.A *= clamp01(alpha)
	return c
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
