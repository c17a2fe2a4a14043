package theme

import (
	"fmt"
	"regexp"
	"strings"
)

// Icons come from arbitrary upstream sources with baked-in colors and
// backgrounds. Recolor strips all of that and forces the accent color so a
// single icon set works across every mythology theme.

var (
	reXMLDecl       = regexp.MustCompile(`<\?xml[^>]*\?>`)
	reComment       = regexp.MustCompile(`(?s)<!--.*?-->`)
	reBackdropRect  = regexp.MustCompile(`(?i)<rect[^>]*fill="(?:#ffffff|#000000|white|black)"[^>]*/>`)
	reFillStyle     = regexp.MustCompile(`(?i)style="[^"]*fill:[^;"]*;?[^"]*"`)
	reFillAttr      = regexp.MustCompile(`(?i)fill="[^"]*"|fill='[^']*'`)
	reStrokeAttr    = regexp.MustCompile(`(?i)stroke="[^"]*"|stroke='[^']*'`)
	reFillOpacity   = regexp.MustCompile(`(?i)fill-opacity="[^"]*"`)
	reStrokeOpacity = regexp.MustCompile(`(?i)stroke-opacity="[^"]*"`)
	reViewBox       = regexp.MustCompile(`(?i)viewBox="([^"]*)"`)
	reWidthAttr     = regexp.MustCompile(`(?i)width="([^"]*)"`)
	reHeightAttr    = regexp.MustCompile(`(?i)height="([^"]*)"`)
	reSVGOpen       = regexp.MustCompile(`(?i)<svg([^>]*)>`)
	reNonNumeric    = regexp.MustCompile(`[^0-9.]`)
)

// Recolor sanitizes an SVG document and paints it with the given accent
// color: declaration/comments and white/black backdrop rects are dropped,
// every fill/stroke attribute is stripped, sizing collapses to a viewBox.
func Recolor(svg string, accent string) string {
	out := svg

	out = reXMLDecl.ReplaceAllString(out, "")
	out = reComment.ReplaceAllString(out, "")
	out = reBackdropRect.ReplaceAllString(out, "")
	out = reFillStyle.ReplaceAllString(out, "")
	out = reFillAttr.ReplaceAllString(out, "")
	out = reStrokeAttr.ReplaceAllString(out, "")
	out = reFillOpacity.ReplaceAllString(out, "")
	out = reStrokeOpacity.ReplaceAllString(out, "")

	viewBox := ""
	if m := reViewBox.FindStringSubmatch(out); m != nil {
		viewBox = m[1]
	}
	if viewBox == "" {
		w, h := "", ""
		if m := reWidthAttr.FindStringSubmatch(out); m != nil {
			w = reNonNumeric.ReplaceAllString(m[1], "")
		}
		if m := reHeightAttr.FindStringSubmatch(out); m != nil {
			h = reNonNumeric.ReplaceAllString(m[1], "")
		}
		if w != "" && h != "" {
			viewBox = fmt.Sprintf("0 0 %s %s", w, h)
		} else {
			viewBox = "0 0 100 100"
		}
	}

	out = reViewBox.ReplaceAllString(out, "")
	out = reWidthAttr.ReplaceAllString(out, "")
	out = reHeightAttr.ReplaceAllString(out, "")

	if accent == "" {
		accent = DefaultAccent
	}
	out = reSVGOpen.ReplaceAllString(out,
		fmt.Sprintf(`<svg$1 viewBox="%s" width="100%%" height="100%%" fill="%s" preserveAspectRatio="xMidYMid meet">`,
			viewBox, accent))

	return strings.TrimSpace(out)
}
