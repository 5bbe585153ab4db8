package agent

import "regexp"

// Detector decides whether a user utterance confirms payment and should
// start order finalization.
type Detector interface {
	IsConfirmation(utterance string) bool
}

// confirmationRe matches the payment-confirmation vocabulary anywhere in the
// utterance, case-insensitively and on word boundaries. This is deliberately
// shallow: a bare "yes" or "okay" inside an unrelated sentence also
// triggers. Intent classification is the model's job, not this regex's.
var confirmationRe = regexp.MustCompile(`(?i)\b(proceed|confirm|yes|go ahead|make the order|place the order|pay|okay)\b`)

// RegexDetector is the default confirmation detector.
type RegexDetector struct{}

// NewRegexDetector creates the default detector.
func NewRegexDetector() *RegexDetector { return &RegexDetector{} }

// IsConfirmation reports whether the utterance contains a confirmation phrase.
func (d *RegexDetector) IsConfirmation(utterance string) bool {
	return confirmationRe.MatchString(utterance)
}
