// Package normative classifies text as normative, informative, or unknown
// per §4.3: advisory metadata derived from RFC 2119 keywords and explicit
// section markers. It never filters content — only tags it.
package normative

import "regexp"

// Indicator is the classification result.
type Indicator string

const (
	Normative   Indicator = "normative"
	Informative Indicator = "informative"
	Unknown     Indicator = "unknown"
)

var (
	normativeSection   = regexp.MustCompile(`(?i)\(normative\)`)
	informativeSection = regexp.MustCompile(`(?i)\(informative\)`)
	normativeKeywords   = regexp.MustCompile(`(?i)\b(SHALL|MUST|REQUIRED|SHOULD|RECOMMENDED)\b`)
	informativeKeywords = regexp.MustCompile(`(?i)\b(MAY|OPTIONAL|CAN|NOTE|EXAMPLE|INFORMATIVE)\b`)
)

// Detect classifies text, optionally informed by the section path it
// belongs to. Priority order: explicit section markers, then normative
// keywords, then informative keywords, else Unknown.
func Detect(text string, sectionPath string) Indicator {
	if normativeSection.MatchString(sectionPath) || normativeSection.MatchString(text) {
		return Normative
	}
	if informativeSection.MatchString(sectionPath) || informativeSection.MatchString(text) {
		return Informative
	}
	if normativeKeywords.MatchString(text) {
		return Normative
	}
	if informativeKeywords.MatchString(text) {
		return Informative
	}
	return Unknown
}
