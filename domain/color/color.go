// Package color converts text colors between the order they are stored
// in and the order the color-picker widget edits them in.
//
// Stored values put the alpha channel first (AARRGGBB), the picker puts
// it last (RRGGBBAA). Both sides are 8 hex digits with an optional
// leading '#'.
package color

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ErrInvalidColor is returned for values that are not 8 hex digits.
type ErrInvalidColor struct {
	Value string
}

func (e *ErrInvalidColor) Error() string {
	return fmt.Sprintf("invalid color value %q: want 8 hex digits with optional leading '#'", e.Value)
}

// normalize strips the optional '#' and validates the 8 hex digits.
func normalize(value string) (digits string, hash bool, err error) {
	digits = value
	if strings.HasPrefix(digits, "#") {
		digits = digits[1:]
		hash = true
	}
	if len(digits) != 8 {
		return "", false, &ErrInvalidColor{Value: value}
	}
	for _, r := range digits {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return "", false, &ErrInvalidColor{Value: value}
		}
	}
	return digits, hash, nil
}

// ToDisplay reorders a stored AARRGGBB value into the RRGGBBAA order
// the picker expects. A leading '#' is preserved.
func ToDisplay(stored string) (string, error) {
	digits, hash, err := normalize(stored)
	if err != nil {
		return "", err
	}
	out := digits[2:8] + digits[0:2]
	if hash {
		out = "#" + out
	}
	return out, nil
}

// ToStorage reorders a picker RRGGBBAA value into the stored AARRGGBB
// order. A leading '#' is preserved.
func ToStorage(display string) (string, error) {
	digits, hash, err := normalize(display)
	if err != nil {
		return "", err
	}
	out := digits[6:8] + digits[0:6]
	if hash {
		out = "#" + out
	}
	return out, nil
}

// ParseStored decodes a stored AARRGGBB value into a non-premultiplied
// RGBA color for rendering.
func ParseStored(stored string) (color.NRGBA, error) {
	digits, _, err := normalize(stored)
	if err != nil {
		return color.NRGBA{}, err
	}
	channels := make([]uint8, 4)
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseUint(digits[i*2:i*2+2], 16, 8)
		if err != nil {
			return color.NRGBA{}, &ErrInvalidColor{Value: stored}
		}
		channels[i] = uint8(v)
	}
	return color.NRGBA{A: channels[0], R: channels[1], G: channels[2], B: channels[3]}, nil
}

// Valid reports whether value is a well-formed color in either order.
func Valid(value string) bool {
	_, _, err := normalize(value)
	return err == nil
}
