package proposal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/good-yellow-bee/grantdoc/internal/models"
)

func strPtr(s string) *string { return &s }

func TestListOrText(t *testing.T) {
	tests := []struct {
		name string
		list models.StringList
		text *string
		want string
	}{
		{name: "list wins", list: models.StringList{"a", "b", "c"}, text: strPtr("ignored"), want: "a; b; c"},
		{name: "single element", list: models.StringList{"only"}, want: "only"},
		{name: "empty list falls back", list: models.StringList{}, text: strPtr("  free text kept as is "), want: "  free text kept as is "},
		{name: "nil list falls back", text: strPtr("fallback"), want: "fallback"},
		{name: "nothing", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ListOrText(tt.list, tt.text))
		})
	}
}

func TestListOrText_AppliesToEveryPair(t *testing.T) {
	s := &models.Submission{
		ObjectivesText: strPtr("obj"),
		ReferencesText: strPtr("ref"),
		WorkElemsText:  strPtr("work"),
		TimeSchedText:  strPtr("time"),
		DeliverText:    strPtr("deliv"),
		ExpertsText:    strPtr("experts"),
	}
	assert.Equal(t, "obj", Objectives(s))
	assert.Equal(t, "ref", References(s))
	assert.Equal(t, "work", WorkElements(s))
	assert.Equal(t, "time", TimeSchedule(s))
	assert.Equal(t, "deliv", Deliverables(s))
	assert.Equal(t, "experts", OutsideExperts(s))

	s.Objectives = models.StringList{"x", "y"}
	s.References = models.StringList{"r1"}
	s.WorkElements = models.StringList{"w1", "w2"}
	s.TimeSchedule = models.StringList{"m1"}
	s.Deliverables = models.StringList{"d1", "d2"}
	s.OutsideExperts = models.StringList{"Dr. A", "Dr. B"}
	assert.Equal(t, "x; y", Objectives(s))
	assert.Equal(t, "r1", References(s))
	assert.Equal(t, "w1; w2", WorkElements(s))
	assert.Equal(t, "m1", TimeSchedule(s))
	assert.Equal(t, "d1; d2", Deliverables(s))
	assert.Equal(t, "Dr. A; Dr. B", OutsideExperts(s))
}

func TestText(t *testing.T) {
	assert.Equal(t, "", Text(nil))
	assert.Equal(t, "value", Text(strPtr("value")))
}

func TestSubArea(t *testing.T) {
	assert.Equal(t, "", SubArea(&models.Submission{}))
	assert.Equal(t, "Energy", SubArea(&models.Submission{Track: "Energy"}))
	assert.Equal(t, "E-1", SubArea(&models.Submission{TrackCode: strPtr("E-1")}))
	assert.Equal(t, "Energy (E-1)", SubArea(&models.Submission{Track: "Energy", TrackCode: strPtr("E-1")}))
}

func TestDurationMonths(t *testing.T) {
	assert.Equal(t, "", DurationMonths(&models.Submission{}))
	s := &models.Submission{Duration: &models.Duration{Days: 40, Months: 2, Years: 1}}
	assert.Equal(t, "15", DurationMonths(s))
}

func TestCoPIFormatting(t *testing.T) {
	coPIs := []models.CoPI{
		{Name: "A", Email: "a@x"},
		{Name: "B", Email: "b@x"},
		{Name: "C", Email: "c@x"},
		{Name: "D", Email: "d@x"},
		{Name: "E", Email: "e@x"},
		{Name: "F", Email: "f@x"},
	}
	assert.Equal(t, "A, B, C, D, E, F", CoPINames(coPIs))
	assert.Equal(t, "a@x, b@x, c@x, d@x, e@x, f@x", CoPIEmails(coPIs))
	assert.Equal(t, "A, B, C, D, E", CoverNames(coPIs))
	assert.Equal(t, "", CoPINames(nil))
	assert.Equal(t, "A", CoverNames(coPIs[:1]))
}

func TestCoPIDetail(t *testing.T) {
	c := models.CoPI{Name: "Dr. Vikram", Email: "v@tiet.edu", Status: "accepted", AccessLevel: "editor"}
	assert.Equal(t, "Dr. Vikram <v@tiet.edu> - editor (accepted)", CoPIDetail(c))

	c.Role = "co-lead"
	assert.Equal(t, "Dr. Vikram <v@tiet.edu> - co-lead (accepted)", CoPIDetail(c))

	assert.Equal(t, "Dr. X", CoPIDetail(models.CoPI{Name: "Dr. X"}))
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{500, "500"},
		{150000, "150000"},
		{12.5, "12.5"},
		{0.25, "0.25"},
		{-40, "-40"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(tt.in))
	}
}

func TestYearCells(t *testing.T) {
	tests := []struct {
		name  string
		years []models.Amount
		want  []string
	}{
		{name: "single", years: []models.Amount{models.NewAmount(500)}, want: []string{"500", "0", "0"}},
		{name: "empty", years: nil, want: []string{"0", "0", "0"}},
		{name: "full", years: []models.Amount{models.NewAmount(1), models.NewAmount(2), models.NewAmount(3)}, want: []string{"1", "2", "3"}},
		{name: "extra slots dropped", years: []models.Amount{models.NewAmount(1), models.NewAmount(2), models.NewAmount(3), models.NewAmount(4)}, want: []string{"1", "2", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, YearCells(tt.years))
		})
	}
}
