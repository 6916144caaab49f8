package color

import (
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"#FDDDE6", "#fddde6"},
		{"%23abc", "#abc"},
		{"  ccc ", "#ccc"},
		{"#abcd", Transparent},
		{"#ggg", Transparent},
		{"", Transparent},
		{"red", Transparent},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEventFontColor(t *testing.T) {
	tests := []struct {
		bg, want string
	}{
		{"#ffffff", DarkText},
		{"#e0e0e0", DarkText},
		{"#fddde6", DarkText},
		{"#336699", LightText},
		{"#000", LightText},
		{"bogus", LightText},
	}
	for _, tt := range tests {
		if got := EventFontColor(tt.bg); got != tt.want {
			t.Errorf("EventFontColor(%q) = %q, want %q", tt.bg, got, tt.want)
		}
	}
}

func TestBlend(t *testing.T) {
	if got := Blend("#336699", "#336699", 0.5); got != "#336699" {
		t.Errorf("Blend(same) = %q", got)
	}
	mid := Blend("#000000", "#ffffff", 0.5)
	if mid == "#000000" || mid == "#ffffff" || len(mid) != 7 {
		t.Errorf("Blend(black, white) = %q", mid)
	}
	if got := Blend("#336699", "#ffffff", 1); got != "#ffffff" {
		t.Errorf("Blend(t=1) = %q", got)
	}
}
