package normative

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect_ExplicitSectionMarkerWins(t *testing.T) {
	// "(normative)" in the section path overrides keyword-based detection
	// even when the text itself reads as informative.
	assert.Equal(t, Normative, Detect("this clause may be skipped", "Annex A (normative)"))
	assert.Equal(t, Informative, Detect("the device shall not leak", "Annex B (informative)"))
}

func TestDetect_KeywordFallback(t *testing.T) {
	assert.Equal(t, Normative, Detect("The system SHALL reject malformed input.", ""))
	assert.Equal(t, Informative, Detect("This NOTE is for guidance only.", ""))
}

func TestDetect_UnknownWhenNoSignal(t *testing.T) {
	assert.Equal(t, Unknown, Detect("The sky is blue today.", "Introduction"))
}

func TestDetect_NormativeKeywordPrecedesInformative(t *testing.T) {
	// Normative keyword check runs before informative keyword check.
	assert.Equal(t, Normative, Detect("The device SHALL support an OPTIONAL mode.", ""))
}
