package theme

import (
	"testing"

	"github.com/mythchat/mythchat/internal/mythology"
)

func TestHexToHue(t *testing.T) {
	cases := []struct {
		hex  string
		want int
	}{
		{"#ff0000", 0},
		{"#00ff00", 120},
		{"#0000ff", 240},
		{"#ffff00", 60},
		{"#00ffff", 180},
		{"#ff00ff", 300},
		{"#ffffff", 0},  // achromatic
		{"#808080", 0},  // achromatic
		{"ff0000", 0},   // no hash prefix
		{"#FF5733", 11}, // mixed case
		{"nonsense", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := HexToHue(tc.hex); got != tc.want {
			t.Errorf("HexToHue(%q) = %d, want %d", tc.hex, got, tc.want)
		}
	}
}

func TestHexToRGB(t *testing.T) {
	if got := HexToRGB("#ff8000"); got != "255, 128, 0" {
		t.Errorf("HexToRGB = %q", got)
	}
	if got := HexToRGB("garbage"); got != "255, 255, 255" {
		t.Errorf("HexToRGB fallback = %q", got)
	}
}

func TestAccentResolutionOrder(t *testing.T) {
	gold := "#ffd700"
	myth := &mythology.Mythology{ID: "asgard", Name: "Nordycka", ThemeColor: "#3366cc"}
	god := &mythology.God{ID: "thor", MythologyID: "asgard", Name: "Thor", AccentColor: &gold}

	if got := Accent(myth, god); got != gold {
		t.Errorf("god accent should win, got %q", got)
	}
	if got := Accent(myth, &mythology.God{ID: "loki"}); got != "#3366cc" {
		t.Errorf("mythology theme expected, got %q", got)
	}
	if got := Accent(nil, nil); got != DefaultAccent {
		t.Errorf("default accent expected, got %q", got)
	}
}

func TestCSSVariables(t *testing.T) {
	vars := CSSVariables("#0000ff")
	if vars["--accent-color"] != "#0000ff" {
		t.Errorf("accent-color = %q", vars["--accent-color"])
	}
	if vars["--accent-hue"] != "240" {
		t.Errorf("accent-hue = %q", vars["--accent-hue"])
	}
	if vars["--accent-rgb"] != "0, 0, 255" {
		t.Errorf("accent-rgb = %q", vars["--accent-rgb"])
	}
}
