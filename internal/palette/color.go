// Package palette generates branch identity colors and derives the
// readable foreground inks and dimmed shades used for window chrome.
package palette

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	hexColorTemplateConstant        = "#%02x%02x%02x"
	hexColorLengthConstant          = 7
	hexColorPrefixConstant          = "#"
	hexComponentBaseConstant        = 16
	hexComponentBitSizeConstant     = 8
	invalidHexColorTemplateConstant = "invalid hex color %q"
)

// Color is a 24-bit sRGB color value.
type Color struct {
	Red   uint8
	Green uint8
	Blue  uint8
}

// Ink colors selected by contrast computation.
var (
	Black = Color{}
	White = Color{Red: 255, Green: 255, Blue: 255}
)

// Hex renders the color as a lowercase #rrggbb string.
func (color Color) Hex() string {
	return fmt.Sprintf(hexColorTemplateConstant, color.Red, color.Green, color.Blue)
}

// String implements fmt.Stringer using the hexadecimal rendering.
func (color Color) String() string {
	return color.Hex()
}

// ParseHex parses a #rrggbb string in either letter case.
func ParseHex(value string) (Color, error) {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) != hexColorLengthConstant || !strings.HasPrefix(trimmedValue, hexColorPrefixConstant) {
		return Color{}, fmt.Errorf(invalidHexColorTemplateConstant, value)
	}

	componentValues := [3]uint8{}
	for componentIndex := range componentValues {
		componentText := trimmedValue[1+componentIndex*2 : 3+componentIndex*2]
		parsedComponent, parseError := strconv.ParseUint(componentText, hexComponentBaseConstant, hexComponentBitSizeConstant)
		if parseError != nil {
			return Color{}, fmt.Errorf(invalidHexColorTemplateConstant, value)
		}
		componentValues[componentIndex] = uint8(parsedComponent)
	}

	return Color{Red: componentValues[0], Green: componentValues[1], Blue: componentValues[2]}, nil
}
