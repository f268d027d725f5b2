package language

import (
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"

	"NewsHarvester/internal/domain"
)

// Detector classifies article body text. Texts below the minimum length
// are reported unknown instead of guessed; so is any unreliable detection.
type Detector struct {
	minChars int
}

// NewDetector builds a classifier with a minimum-length floor.
func NewDetector(minChars int) *Detector {
	return &Detector{minChars: minChars}
}

// Detect returns a supported language code or unknown. It never fails.
func (d *Detector) Detect(text string) domain.Language {
	if utf8.RuneCountInString(text) < d.minChars {
		return domain.LangUnknown
	}

	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return domain.LangUnknown
	}

	return domain.ParseLanguage(info.Lang.Iso6391())
}
