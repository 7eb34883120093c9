// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// Label is a binary training label derived from a platform status string.
type Label int

// Labels. LabelUnknown marks statuses that are excluded from training.
const (
	LabelUnknown  Label = -1
	LabelNegative Label = 0
	LabelPositive Label = 1
)

var refereeStatusLabels = map[string]Label{
	"accepted":         LabelPositive,
	"agreed":           LabelPositive,
	"report submitted": LabelPositive,
	"completed":        LabelPositive,
	"review completed": LabelPositive,
	"declined":         LabelNegative,
	"unavailable":      LabelNegative,
	"no response":      LabelNegative,
}

var manuscriptStatusLabels = map[string]Label{
	"completed accept": LabelPositive,
	"accept":           LabelPositive,
	"accepted":         LabelPositive,
	"desk reject":      LabelNegative,
	"reject":           LabelNegative,
	"completed reject": LabelNegative,
	"rejected":         LabelNegative,
}

func normalizeStatus(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// ClassifyRefereeStatus maps a referee invitation status to whether the
// referee agreed to review. Unlisted statuses are LabelUnknown.
func ClassifyRefereeStatus(status string) Label {
	if l, ok := refereeStatusLabels[normalizeStatus(status)]; ok {
		return l
	}
	return LabelUnknown
}

// ClassifyManuscriptStatus maps a final manuscript status to accept or
// reject. Ambiguous statuses ("Major Revision", "Under Review") are
// LabelUnknown and must not be coerced.
func ClassifyManuscriptStatus(status string) Label {
	if l, ok := manuscriptStatusLabels[normalizeStatus(status)]; ok {
		return l
	}
	return LabelUnknown
}
