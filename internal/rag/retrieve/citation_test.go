package retrieve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCitation_TitleOnly(t *testing.T) {
	assert.Equal(t, "ISO 9001", FormatCitation("ISO 9001", "", nil, ""))
}

func TestFormatCitation_ClauseNumberDefaultsToClausePrefix(t *testing.T) {
	assert.Equal(t, "ISO 9001, Clause 4.2.1", FormatCitation("ISO 9001", "4.2.1", nil, ""))
}

func TestFormatCitation_PreservesExplicitSectionOrClausePrefix(t *testing.T) {
	assert.Equal(t, "ISO 9001, Section 4.2.1", FormatCitation("ISO 9001", "Section 4.2.1", nil, ""))
}

func TestFormatCitation_WithSectionTitle(t *testing.T) {
	assert.Equal(t, "ISO 9001, Clause 4.2.1 (Quality Manual)", FormatCitation("ISO 9001", "4.2.1", nil, "Quality Manual"))
}

func TestFormatCitation_SinglePage(t *testing.T) {
	assert.Equal(t, "ISO 9001, p.12", FormatCitation("ISO 9001", "", []int{12}, ""))
}

func TestFormatCitation_PageRange(t *testing.T) {
	assert.Equal(t, "ISO 9001, pp.12-15", FormatCitation("ISO 9001", "", []int{12, 15, 13}, ""))
}

func TestFormatCitation_AllComponents(t *testing.T) {
	got := FormatCitation("ISO 9001", "4.2.1", []int{12, 13}, "Quality Manual")
	assert.Equal(t, "ISO 9001, Clause 4.2.1 (Quality Manual), pp.12-13", got)
}
