package palette

import (
	"math"
	"math/rand"
	"time"
)

// DefaultInactiveDim is the canonical darkening amount applied when deriving
// inactive chrome shades from an identity color.
const DefaultInactiveDim = 0.3

const (
	hueUpperBoundConstant        = 360.0
	saturationLowerBoundConstant = 60.0
	saturationUpperBoundConstant = 80.0
	lightnessLowerBoundConstant  = 40.0
	lightnessUpperBoundConstant  = 50.0
	percentDivisorConstant       = 100.0
	channelScaleConstant         = 255.0

	oneSixthHueConstant  = 1.0 / 6.0
	oneThirdHueConstant  = 1.0 / 3.0
	oneHalfHueConstant   = 1.0 / 2.0
	twoThirdsHueConstant = 2.0 / 3.0

	linearizationThresholdConstant = 0.03928
	linearizationDivisorConstant   = 12.92
	linearizationOffsetConstant    = 0.055
	linearizationScaleConstant     = 1.055
	linearizationExponentConstant  = 2.4
	redLuminanceWeightConstant     = 0.2126
	greenLuminanceWeightConstant   = 0.7152
	blueLuminanceWeightConstant    = 0.0722
	darkInkLuminanceCutoffConstant = 0.179
)

// Generator produces branch identity colors from a random source.
type Generator struct {
	randomSource *rand.Rand
}

// NewGenerator constructs a Generator backed by the provided random source.
// A nil source falls back to a time-seeded one.
func NewGenerator(randomSource *rand.Rand) *Generator {
	if randomSource == nil {
		randomSource = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{randomSource: randomSource}
}

// Generate picks a fresh identity color across the full hue wheel with
// mid-range saturation and lightness so derived inks stay readable.
func (generator *Generator) Generate() Color {
	hueDegrees := generator.randomSource.Float64() * hueUpperBoundConstant
	saturationPercent := generator.randomInRange(saturationLowerBoundConstant, saturationUpperBoundConstant)
	lightnessPercent := generator.randomInRange(lightnessLowerBoundConstant, lightnessUpperBoundConstant)
	return ColorFromHSL(hueDegrees, saturationPercent, lightnessPercent)
}

func (generator *Generator) randomInRange(lowerBound float64, upperBound float64) float64 {
	return lowerBound + generator.randomSource.Float64()*(upperBound-lowerBound)
}

// ColorFromHSL converts a hue in degrees plus saturation and lightness in
// percent into an sRGB color, rounding each channel to the nearest integer.
func ColorFromHSL(hueDegrees float64, saturationPercent float64, lightnessPercent float64) Color {
	hue := hueDegrees / hueUpperBoundConstant
	saturation := saturationPercent / percentDivisorConstant
	lightness := lightnessPercent / percentDivisorConstant

	if saturation == 0 {
		grayChannel := roundNormalizedChannel(lightness)
		return Color{Red: grayChannel, Green: grayChannel, Blue: grayChannel}
	}

	var upperIntermediate float64
	if lightness < oneHalfHueConstant {
		upperIntermediate = lightness * (1 + saturation)
	} else {
		upperIntermediate = lightness + saturation - lightness*saturation
	}
	lowerIntermediate := 2*lightness - upperIntermediate

	return Color{
		Red:   roundNormalizedChannel(hueToChannel(lowerIntermediate, upperIntermediate, hue+oneThirdHueConstant)),
		Green: roundNormalizedChannel(hueToChannel(lowerIntermediate, upperIntermediate, hue)),
		Blue:  roundNormalizedChannel(hueToChannel(lowerIntermediate, upperIntermediate, hue-oneThirdHueConstant)),
	}
}

func hueToChannel(lowerIntermediate float64, upperIntermediate float64, hue float64) float64 {
	if hue < 0 {
		hue++
	}
	if hue > 1 {
		hue--
	}
	switch {
	case hue < oneSixthHueConstant:
		return lowerIntermediate + (upperIntermediate-lowerIntermediate)*6*hue
	case hue < oneHalfHueConstant:
		return upperIntermediate
	case hue < twoThirdsHueConstant:
		return lowerIntermediate + (upperIntermediate-lowerIntermediate)*(twoThirdsHueConstant-hue)*6
	default:
		return lowerIntermediate
	}
}

// Darken scales every channel toward black by the given amount in [0,1],
// rounding each result to the nearest integer.
func Darken(color Color, amount float64) Color {
	retainedFraction := 1 - amount
	return Color{
		Red:   clampChannel(float64(color.Red) * retainedFraction),
		Green: clampChannel(float64(color.Green) * retainedFraction),
		Blue:  clampChannel(float64(color.Blue) * retainedFraction),
	}
}

// ContrastInk selects the ink that stays readable on the given background.
// Backgrounds whose relative luminance exceeds the cutoff take black ink,
// all others take white. No other ink is ever returned.
func ContrastInk(background Color) Color {
	if RelativeLuminance(background) > darkInkLuminanceCutoffConstant {
		return Black
	}
	return White
}

// RelativeLuminance computes the WCAG relative luminance of the color.
func RelativeLuminance(color Color) float64 {
	linearRed := linearizeChannel(float64(color.Red) / channelScaleConstant)
	linearGreen := linearizeChannel(float64(color.Green) / channelScaleConstant)
	linearBlue := linearizeChannel(float64(color.Blue) / channelScaleConstant)
	return redLuminanceWeightConstant*linearRed + greenLuminanceWeightConstant*linearGreen + blueLuminanceWeightConstant*linearBlue
}

func linearizeChannel(normalizedChannel float64) float64 {
	if normalizedChannel <= linearizationThresholdConstant {
		return normalizedChannel / linearizationDivisorConstant
	}
	return math.Pow((normalizedChannel+linearizationOffsetConstant)/linearizationScaleConstant, linearizationExponentConstant)
}

func roundNormalizedChannel(normalizedValue float64) uint8 {
	return clampChannel(normalizedValue * channelScaleConstant)
}

func clampChannel(channelValue float64) uint8 {
	roundedValue := math.Round(channelValue)
	if roundedValue < 0 {
		return 0
	}
	if roundedValue > channelScaleConstant {
		return uint8(channelScaleConstant)
	}
	return uint8(roundedValue)
}
