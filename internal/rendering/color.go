package rendering

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Accent color legibility. A newsletter's accent color is used both as a
// background (buttons, paywall CTA) and as link text; very light accents are
// darkened so they stay readable, and the contrast color picks white or
// near-black text for accent-colored surfaces.
const (
	contrastLight = "#FFFFFF"
	contrastDark  = "#15212A"

	// Max HSL lightness an accent may keep when used as text/background.
	maxAccentLightness = 0.7
)

// AdjustedAccentColor darkens an overly light accent color until it is
// legible, leaving already-legible colors untouched. Unparseable input is
// returned unchanged.
func AdjustedAccentColor(hex string) string {
	r, g, b, ok := parseHexColor(hex)
	if !ok {
		return hex
	}
	h, s, l := rgbToHSL(r, g, b)
	if l <= maxAccentLightness {
		return formatHexColor(r, g, b)
	}
	r, g, b = hslToRGB(h, s, maxAccentLightness)
	return formatHexColor(r, g, b)
}

// AccentContrastColor selects white or near-black text for surfaces painted
// with the accent color, by relative luminance. Unparseable input gets
// white, matching the dark default accent.
func AccentContrastColor(hex string) string {
	r, g, b, ok := parseHexColor(hex)
	if !ok {
		return contrastLight
	}
	if relativeLuminance(r, g, b) > 0.5 {
		return contrastDark
	}
	return contrastLight
}

// parseHexColor accepts #RGB and #RRGGBB, with or without the leading '#'.
func parseHexColor(s string) (r, g, b uint8, ok bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}

func formatHexColor(r, g, b uint8) string {
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// relativeLuminance implements the WCAG 2.x formula.
func relativeLuminance(r, g, b uint8) float64 {
	lin := func(c uint8) float64 {
		v := float64(c) / 255
		if v <= 0.03928 {
			return v / 12.92
		}
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(r) + 0.7152*lin(g) + 0.0722*lin(b)
}

func rgbToHSL(r, g, b uint8) (float64, float64, float64) {
	rf, gf, bf := float64(r)/255, float64(g)/255, float64(b)/255
	max := math.Max(rf, math.Max(gf, bf))
	min := math.Min(rf, math.Min(gf, bf))
	l := (max + min) / 2

	if max == min {
		return 0, 0, l // achromatic
	}

	d := max - min
	var s float64
	if l > 0.5 {
		s = d / (2 - max - min)
	} else {
		s = d / (max + min)
	}

	var h float64
	switch max {
	case rf:
		h = (gf - bf) / d
		if gf < bf {
			h += 6
		}
	case gf:
		h = (bf-rf)/d + 2
	default:
		h = (rf-gf)/d + 4
	}
	return h / 6, s, l
}

func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	if s == 0 {
		v := uint8(math.Round(l * 255))
		return v, v, v
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	conv := func(t float64) uint8 {
		if t < 0 {
			t++
		}
		if t > 1 {
			t--
		}
		var v float64
		switch {
		case t < 1.0/6:
			v = p + (q-p)*6*t
		case t < 1.0/2:
			v = q
		case t < 2.0/3:
			v = p + (q-p)*(2.0/3-t)*6
		default:
			v = p
		}
		return uint8(math.Round(v * 255))
	}
	return conv(h + 1.0/3), conv(h), conv(h - 1.0/3)
}
