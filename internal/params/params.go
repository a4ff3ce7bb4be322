// Package params converts UI-friendly rate and volume ranges into the
// signed percentage-offset strings the synthesis provider expects.
package params

import (
	"fmt"
	"math"
)

// Slider and offset bounds.
const (
	// RateSliderMin and RateSliderMax bound the speech-rate slider.
	RateSliderMin = 100
	RateSliderMax = 250

	// rateSliderNeutral is the slider position that maps to a 0% offset.
	rateSliderNeutral = 175

	// rateSliderHalfSpan is the slider distance that maps to a full 50% offset.
	rateSliderHalfSpan = 75

	// offsetMin and offsetMax bound the provider's rate offset.
	offsetMin = -50
	offsetMax = 50

	// volumeOffsetMax caps volume at 0%: attenuation only, never gain.
	volumeOffsetMax = 0

	// volumeOffsetSpan is the attenuation mapped onto the full volume slider.
	volumeOffsetSpan = 50

	offsetFormat = "%+d%%"
)

// RateOffset maps a slider value in [100,250] to the provider's signed
// rate-offset string in [-50%,+50%]. The neutral position 175 maps to
// "+0%". Out-of-range input is clamped, never rejected.
func RateOffset(slider int) string {
	val := int(math.Round(float64(slider-rateSliderNeutral) / rateSliderHalfSpan * offsetMax))

	return fmt.Sprintf(offsetFormat, clamp(val, offsetMin, offsetMax))
}

// VolumeOffset maps a volume fraction in [0.0,1.0] to the provider's
// signed volume-offset string in [-50%,+0%]. Full volume (1.0) maps to
// "+0%", silence on the slider (0.0) maps to "-50%". Out-of-range input
// is clamped, never rejected.
func VolumeOffset(fraction float64) string {
	val := int(math.Round((fraction - 1.0) * volumeOffsetSpan))

	return fmt.Sprintf(offsetFormat, clamp(val, offsetMin, volumeOffsetMax))
}

func clamp(val, low, high int) int {
	if val < low {
		return low
	}

	if val > high {
		return high
	}

	return val
}
