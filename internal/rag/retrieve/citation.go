package retrieve

import (
	"fmt"
	"strings"
)

// FormatCitation renders a standards-compliant citation string (§4.9,
// exactly grounded on the original format_citation contract):
// "Title[, Clause|Section X.Y.Z[ (Section Title)]][, p.N | pp.N-M]".
func FormatCitation(documentTitle, clauseNumber string, pageNumbers []int, sectionTitle string) string {
	components := []string{documentTitle}

	if clauseNumber != "" {
		lower := strings.ToLower(clauseNumber)
		var clausePart string
		switch {
		case strings.HasPrefix(lower, "section"), strings.HasPrefix(lower, "clause"):
			clausePart = clauseNumber
		default:
			clausePart = "Clause " + clauseNumber
		}
		if sectionTitle != "" {
			clausePart = fmt.Sprintf("%s (%s)", clausePart, sectionTitle)
		}
		components = append(components, clausePart)
	}

	if len(pageNumbers) > 0 {
		if len(pageNumbers) == 1 {
			components = append(components, fmt.Sprintf("p.%d", pageNumbers[0]))
		} else {
			lo, hi := pageNumbers[0], pageNumbers[0]
			for _, p := range pageNumbers[1:] {
				if p < lo {
					lo = p
				}
				if p > hi {
					hi = p
				}
			}
			components = append(components, fmt.Sprintf("pp.%d-%d", lo, hi))
		}
	}

	return strings.Join(components, ", ")
}
