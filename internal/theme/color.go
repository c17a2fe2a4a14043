package theme

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mythchat/mythchat/internal/mythology"
)

// DefaultAccent is used when neither a god nor a mythology carries a color.
const DefaultAccent = "#ffffff"

// HexToHue converts a hex color ("#FF5733" or "FF5733") to an HSL hue
// angle in degrees, 0..360. Malformed input yields 0.
func HexToHue(hex string) int {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return 0
	}

	max := maxf(r, maxf(g, b))
	min := minf(r, minf(g, b))
	delta := max - min

	var hue float64
	switch {
	case delta == 0:
		hue = 0
	case max == r:
		extra := 0.0
		if g < b {
			extra = 6
		}
		hue = ((g-b)/delta + extra) / 6
	case max == g:
		hue = ((b-r)/delta + 2) / 6
	default:
		hue = ((r-g)/delta + 4) / 6
	}

	return int(hue*360 + 0.5)
}

// HexToRGB returns the "r, g, b" triple used for the --accent-rgb variable.
func HexToRGB(hex string) string {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return "255, 255, 255"
	}
	return fmt.Sprintf("%d, %d, %d", int(r*255+0.5), int(g*255+0.5), int(b*255+0.5))
}

// Accent resolves the active accent color: god accent if set, else the
// mythology theme color, else DefaultAccent.
func Accent(myth *mythology.Mythology, god *mythology.God) string {
	if god != nil && god.AccentColor != nil && *god.AccentColor != "" {
		return *god.AccentColor
	}
	if myth != nil && myth.ThemeColor != "" {
		return myth.ThemeColor
	}
	return DefaultAccent
}

// CSSVariables returns the global style variables derived from an accent
// color, keyed the way the UI injects them.
func CSSVariables(accent string) map[string]string {
	return map[string]string{
		"--accent-color": accent,
		"--accent-hue":   strconv.Itoa(HexToHue(accent)),
		"--accent-rgb":   HexToRGB(accent),
	}
}

func parseHex(hex string) (r, g, b float64, ok bool) {
	clean := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(clean) != 6 {
		return 0, 0, 0, false
	}
	n, err := strconv.ParseUint(clean, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	r = float64((n>>16)&0xff) / 255
	g = float64((n>>8)&0xff) / 255
	b = float64(n&0xff) / 255
	return r, g, b, true
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
