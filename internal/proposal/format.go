package proposal

import (
	"math"
	"strconv"
	"strings"

	"github.com/good-yellow-bee/grantdoc/internal/models"
)

// MaxCoverNames caps the co-investigator names listed on the cover page.
const MaxCoverNames = 5

// yearSlots is the number of per-year budget columns.
const yearSlots = 3

// Text returns the value of an optional field or "".
func Text(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// ListOrText formats a structured list field with its free-text companion.
// A non-empty list wins and is joined with "; "; otherwise the free text is
// used; otherwise "".
func ListOrText(list models.StringList, text *string) string {
	if len(list) > 0 {
		return strings.Join(list, "; ")
	}
	return Text(text)
}

// Objectives formats the project objectives.
func Objectives(s *models.Submission) string {
	return ListOrText(s.Objectives, s.ObjectivesText)
}

// References formats the literature references.
func References(s *models.Submission) string {
	return ListOrText(s.References, s.ReferencesText)
}

// WorkElements formats the organization of work elements.
func WorkElements(s *models.Submission) string {
	return ListOrText(s.WorkElements, s.WorkElemsText)
}

// TimeSchedule formats the milestone schedule.
func TimeSchedule(s *models.Submission) string {
	return ListOrText(s.TimeSchedule, s.TimeSchedText)
}

// Deliverables formats the project deliverables.
func Deliverables(s *models.Submission) string {
	return ListOrText(s.Deliverables, s.DeliverText)
}

// OutsideExperts formats the names of outside experts.
func OutsideExperts(s *models.Submission) string {
	return ListOrText(s.OutsideExperts, s.ExpertsText)
}

// Keywords joins the keyword list with ", ".
func Keywords(s *models.Submission) string {
	return strings.Join(s.Keywords, ", ")
}

// SubArea returns the track, followed by the track code when present.
func SubArea(s *models.Submission) string {
	track := strings.TrimSpace(s.Track)
	code := strings.TrimSpace(Text(s.TrackCode))
	switch {
	case code == "":
		return track
	case track == "":
		return code
	default:
		return track + " (" + code + ")"
	}
}

// DurationMonths returns the total duration in months, or "" when absent.
func DurationMonths(s *models.Submission) string {
	if s.Duration == nil {
		return ""
	}
	return strconv.Itoa(s.Duration.TotalMonths())
}

// CoPINames joins all co-investigator names with ", ".
func CoPINames(coPIs []models.CoPI) string {
	names := make([]string, 0, len(coPIs))
	for _, c := range coPIs {
		names = append(names, c.Name)
	}
	return strings.Join(names, ", ")
}

// CoPIEmails joins all co-investigator emails with ", ".
func CoPIEmails(coPIs []models.CoPI) string {
	emails := make([]string, 0, len(coPIs))
	for _, c := range coPIs {
		emails = append(emails, c.Email)
	}
	return strings.Join(emails, ", ")
}

// CoverNames joins at most MaxCoverNames co-investigator names.
func CoverNames(coPIs []models.CoPI) string {
	if len(coPIs) > MaxCoverNames {
		coPIs = coPIs[:MaxCoverNames]
	}
	return CoPINames(coPIs)
}

// CoPIDetail describes one co-investigator on a single line.
func CoPIDetail(c models.CoPI) string {
	parts := []string{c.Name}
	if c.Email != "" {
		parts = append(parts, "<"+c.Email+">")
	}
	role := c.Role
	if role == "" {
		role = c.AccessLevel
	}
	if role != "" {
		parts = append(parts, "- "+role)
	}
	if c.Status != "" {
		parts = append(parts, "("+c.Status+")")
	}
	return strings.Join(parts, " ")
}

// FormatAmount renders a money value in its shortest decimal form.
func FormatAmount(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// AmountText renders an amount for display. Non-numeric values are shown as
// provided.
func AmountText(a models.Amount) string {
	if !a.Numeric() {
		return a.String()
	}
	return FormatAmount(a.Float())
}

// YearCells returns exactly three display cells for a per-year amount list.
// Missing slots show "0"; extra slots are not displayed.
func YearCells(years []models.Amount) []string {
	cells := make([]string, yearSlots)
	for i := range cells {
		if i < len(years) {
			cells[i] = AmountText(years[i])
		} else {
			cells[i] = "0"
		}
	}
	return cells
}
