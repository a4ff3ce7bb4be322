// Package voices filters and labels the synthesis provider's voice
// catalog and caches it for a bounded time.
package voices

import (
	"fmt"
	"strings"

	"github.com/upskill-audio/text-to-audio-service/internal/core"
)

// Label and matching constants.
const (
	genderFemale = "female"

	// neuralSuffix is the literal ShortName suffix promoted into the label.
	neuralSuffix = "Neural"

	shortNameSeparator = "-"
	labelFormat        = "%s — %s — %s"
	neuralLabelFormat  = "%s (Neural)"
)

// Default voice preferences, in priority order.
var defaultPreferences = []string{"jenny", "aria"}

// Filter selects voices matching the preferred locale and gender. An
// empty locale means any locale; preferFemale narrows to voices whose
// gender is "female", compared case-insensitively.
//
// Matching falls back in two stages so a non-empty catalog never filters
// down to nothing: first the gender constraint is dropped, then the
// locale constraint. Input order is preserved.
func Filter(catalog []core.Voice, locale string, preferFemale bool) []core.Voice {
	out := make([]core.Voice, 0, len(catalog))

	for _, voice := range catalog {
		if locale != "" && voice.Locale != locale {
			continue
		}

		if preferFemale && !strings.EqualFold(voice.Gender, genderFemale) {
			continue
		}

		out = append(out, voice)
	}

	if len(out) == 0 && locale != "" {
		for _, voice := range catalog {
			if voice.Locale == locale {
				out = append(out, voice)
			}
		}
	}

	if len(out) == 0 {
		out = append(out, catalog...)
	}

	return out
}

// Label renders a human-readable selection label for a voice, e.g.
// "Jenny (Neural) — en-US — Female". The display name is the trailing
// segment of the ShortName; a literal "Neural" suffix is stripped and
// re-appended in parentheses.
func Label(voice core.Voice) string {
	display := voice.ShortName
	if idx := strings.LastIndex(display, shortNameSeparator); idx >= 0 {
		display = display[idx+len(shortNameSeparator):]
	}

	if base, found := strings.CutSuffix(display, neuralSuffix); found {
		display = fmt.Sprintf(neuralLabelFormat, base)
	}

	return fmt.Sprintf(labelFormat, display, voice.Locale, voice.Gender)
}

// DefaultLabel picks the preferred default from an ordered list of
// labels: the first containing "jenny" (any case), else the first
// containing "aria", else the first label. Returns "" only for an empty
// list.
func DefaultLabel(labels []string) string {
	if len(labels) == 0 {
		return ""
	}

	for _, preference := range defaultPreferences {
		for _, label := range labels {
			if strings.Contains(strings.ToLower(label), preference) {
				return label
			}
		}
	}

	return labels[0]
}
