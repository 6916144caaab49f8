// Package color normalizes user supplied CSS colors and picks readable text
// colors for event blocks.
package color

import (
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	// Transparent is returned for colors that fail validation.
	Transparent = "transparent"

	DarkText  = "#333"
	LightText = "#eee"
)

// Sanitize returns a lowercase "#rgb" or "#rrggbb" color, or Transparent.
// A leading "#" or its URL-encoded form "%23" is accepted.
func Sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "#")
	s = strings.TrimPrefix(s, "%23")
	if len(s) != 3 && len(s) != 6 {
		return Transparent
	}
	for _, r := range s {
		if !isHex(r) {
			return Transparent
		}
	}
	return "#" + strings.ToLower(s)
}

func isHex(r rune) bool {
	return ('0' <= r && r <= '9') || ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')
}

// parse returns the color for a sanitized hex string; invalid input is black.
func parse(s string) colorful.Color {
	c, err := colorful.Hex(Sanitize(s))
	if err != nil {
		return colorful.Color{}
	}
	return c
}

// FontColor returns the text color for a block with background bg: dark
// text on bright backgrounds (HSV value above threshold), light otherwise.
func FontColor(bg string, threshold float64) string {
	_, _, v := parse(bg).Hsv()
	if v > threshold {
		return DarkText
	}
	return LightText
}

// EventFontColor is FontColor with the threshold used for calendar blocks.
func EventFontColor(bg string) string {
	return FontColor(bg, 0.8)
}

// Blend mixes a toward b in Lab space; t=0 yields a, t=1 yields b.
func Blend(a, b string, t float64) string {
	return parse(a).BlendLab(parse(b), t).Clamped().Hex()
}
