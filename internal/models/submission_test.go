package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacySubmission = `{
	"_id": "65f0c0ffee",
	"status": "Submitted",
	"track": "Sustainable Energy",
	"trackCode": "SE-2",
	"unique_id": "TIET-SMG-0042",
	"updatedAt": "2024-03-12T10:15:30.123Z",
	"user": "Dr. Asha Rao",
	"project-title": "Low-cost perovskite cells",
	"project-keywords": ["solar", "perovskite"],
	"project-duration": {"days": 40, "months": 2, "years": 1},
	"total-cost": "1,50,000",
	"coPI": [{"email": "v@tiet.edu", "name": "Dr. Vikram", "status": "accepted"}]
}`

func TestSubmissionUnmarshal_Legacy(t *testing.T) {
	var s Submission
	require.NoError(t, json.Unmarshal([]byte(legacySubmission), &s))

	assert.Equal(t, "65f0c0ffee", s.ID.String())
	assert.True(t, s.IsSubmitted())
	assert.Equal(t, "Dr. Asha Rao", s.User.String())
	assert.True(t, s.UpdatedAt.Structured())
	assert.Equal(t, "2024-03-12T10:15:30Z", s.UpdatedAt.String())
	assert.True(t, s.CreatedAt.IsZero())
	assert.Equal(t, StringList{"solar", "perovskite"}, s.Keywords)
	require.NotNil(t, s.Duration)
	assert.Equal(t, 15, s.Duration.TotalMonths())
	require.NotNil(t, s.TotalCost)
	assert.Equal(t, 150000.0, s.TotalCost.Float())
	require.Len(t, s.CoPIs, 1)
	assert.Equal(t, "Dr. Vikram", s.CoPIs[0].Name)
}

func TestSubmissionUnmarshal_VariantShapes(t *testing.T) {
	body := `{
		"_id": {"$oid": "abc123"},
		"status": "draft",
		"unique_id": "X-1",
		"updatedAt": {"$date": 1710238530000},
		"createdAt": "last tuesday",
		"user": {"name": "Dr. Meera", "email": "m@tiet.edu"},
		"project-keywords": "single keyword",
		"project-objective": ["one", 2, null],
		"budget": [{"type": "Recurring", "items": [
			{"heading": "Consumables", "years": ["100", 200], "total": 300, "justification": "lab"}
		]}]
	}`

	var s Submission
	require.NoError(t, json.Unmarshal([]byte(body), &s))

	assert.Equal(t, "abc123", s.ID.String())
	assert.False(t, s.IsSubmitted())
	assert.False(t, s.UpdatedAt.Structured())
	assert.Equal(t, `{"$date":1710238530000}`, s.UpdatedAt.String())
	assert.Equal(t, "last tuesday", s.CreatedAt.String())
	assert.Equal(t, "Dr. Meera", s.User.String())
	assert.Equal(t, StringList{"single keyword"}, s.Keywords)
	assert.Equal(t, StringList{"one", "2"}, s.Objectives)
	require.Len(t, s.Budget, 1)
	assert.Equal(t, []Amount{NewAmount(100), NewAmount(200)}, s.Budget[0].Items[0].Years)
	assert.Equal(t, NewAmount(300), s.Budget[0].Items[0].Total)
}

func TestSubmissionUnmarshal_NumericID(t *testing.T) {
	var s Submission
	require.NoError(t, json.Unmarshal([]byte(`{"_id": 9001}`), &s))
	assert.Equal(t, "9001", s.ID.String())
}

func TestSubmissionUnmarshal_RejectsNonObject(t *testing.T) {
	var s Submission
	assert.Error(t, json.Unmarshal([]byte(`[1,2,3]`), &s))
}

func TestAmountUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		numeric bool
		value   float64
		text    string
	}{
		{name: "number", input: `500`, numeric: true, value: 500, text: "500"},
		{name: "decimal", input: `12.5`, numeric: true, value: 12.5, text: "12.5"},
		{name: "numeric string", input: `"2,000"`, numeric: true, value: 2000, text: "2000"},
		{name: "empty string", input: `""`, numeric: true, text: "0"},
		{name: "null", input: `null`, numeric: true, text: "0"},
		{name: "text", input: `"lots"`, text: "lots"},
		{name: "currency prefix", input: `"Rs. 50,000"`, text: "Rs. 50,000"},
		{name: "nan string", input: `"NaN"`, text: "NaN"},
		{name: "object", input: `{"inr": 5}`, text: `{"inr":5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Amount
			require.NoError(t, json.Unmarshal([]byte(tt.input), &a))
			assert.Equal(t, tt.numeric, a.Numeric())
			assert.Equal(t, tt.value, a.Float())
			assert.Equal(t, tt.text, a.String())
		})
	}
}

func TestAmountMarshal(t *testing.T) {
	data, err := json.Marshal(NewAmount(1500))
	require.NoError(t, err)
	assert.JSONEq(t, `1500`, string(data))

	var opaque Amount
	require.NoError(t, json.Unmarshal([]byte(`"TBD"`), &opaque))
	data, err = json.Marshal(opaque)
	require.NoError(t, err)
	assert.JSONEq(t, `"TBD"`, string(data))
}

func TestSubmissionUnmarshal_NonNumericAmounts(t *testing.T) {
	for _, cost := range []string{"Rs. 50,000", "50000 INR", "TBD"} {
		t.Run(cost, func(t *testing.T) {
			body := `{
				"_id": "a1",
				"status": "submitted",
				"unique_id": "TIET-9",
				"total-cost": "` + cost + `",
				"budget": [{"type": "Recurring", "items": [
					{"heading": "Travel", "years": ["n/a", 400], "total": "see note", "justification": "x"}
				]}]
			}`

			var s Submission
			require.NoError(t, json.Unmarshal([]byte(body), &s))
			assert.Equal(t, "TIET-9", s.UniqueID)

			require.NotNil(t, s.TotalCost)
			assert.False(t, s.TotalCost.Numeric())
			assert.Equal(t, cost, s.TotalCost.String())
			assert.Zero(t, s.TotalCost.Float())

			item := s.Budget[0].Items[0]
			require.Len(t, item.Years, 2)
			assert.Equal(t, "n/a", item.Years[0].String())
			assert.Zero(t, item.Years[0].Float())
			assert.Equal(t, 400.0, item.Years[1].Float())
			assert.Equal(t, "see note", item.Total.String())

			resp := NewSubmissionResponse(&s)
			require.NotNil(t, resp.TotalCost)
			assert.Equal(t, cost, *resp.TotalCost)
		})
	}
}

func TestTimestampMarshalRoundTrip(t *testing.T) {
	structured := NewTimestamp(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	data, err := json.Marshal(structured)
	require.NoError(t, err)

	var back Timestamp
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, structured.String(), back.String())

	var opaque Timestamp
	require.NoError(t, json.Unmarshal([]byte(`12345`), &opaque))
	data, err = json.Marshal(opaque)
	require.NoError(t, err)
	assert.JSONEq(t, `12345`, string(data))
	assert.Equal(t, "12345", opaque.String())
}

func TestDurationTotalMonths(t *testing.T) {
	tests := []struct {
		d    Duration
		want int
	}{
		{Duration{Days: 40, Months: 2, Years: 1}, 15},
		{Duration{Days: 29}, 0},
		{Duration{Days: 60, Years: 2}, 26},
		{Duration{}, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.d.TotalMonths(), "%+v", tt.d)
	}
}

func TestNewSubmissionResponse(t *testing.T) {
	var s Submission
	require.NoError(t, json.Unmarshal([]byte(legacySubmission), &s))

	resp := NewSubmissionResponse(&s)
	assert.Equal(t, "65f0c0ffee", resp.ID)
	assert.Equal(t, "2024-03-12T10:15:30Z", resp.UpdatedAt)
	assert.Nil(t, resp.CreatedAt)
	assert.Nil(t, resp.DiscardedAt)
	assert.Equal(t, []string{"solar", "perovskite"}, resp.ProjectKeywords)
	require.NotNil(t, resp.TotalCost)
	assert.Equal(t, "150000", *resp.TotalCost)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"total_cost":"150000"`)

	list := NewSubmissionResponses([]*Submission{&s, &s})
	assert.Len(t, list, 2)
}
