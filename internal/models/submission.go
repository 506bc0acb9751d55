package models

import (
	"encoding/json"
	"strings"
)

// StatusSubmitted is the status of an application that is ready for review.
const StatusSubmitted = "submitted"

// Submission is one seed-money grant application as served by the upstream
// admin API. Every descriptive field is optional.
type Submission struct {
	ID        ID        `json:"_id"`
	UniqueID  string    `json:"unique_id"`
	Status    string    `json:"status"`
	Track     string    `json:"track"`
	TrackCode *string   `json:"trackCode,omitempty"`
	User      Person    `json:"user"`
	MaxFilled *int      `json:"maxFilled,omitempty"`
	UpdatedAt Timestamp `json:"updatedAt"`
	CreatedAt Timestamp `json:"createdAt"`
	// DiscardedAt is set when the applicant withdrew the proposal.
	DiscardedAt Timestamp `json:"discardedAt"`

	Title    *string    `json:"project-title,omitempty"`
	Summary  *string    `json:"project-summary,omitempty"`
	Keywords StringList `json:"project-keywords,omitempty"`
	Duration *Duration  `json:"project-duration,omitempty"`

	Objectives     StringList `json:"project-objective,omitempty"`
	ObjectivesText *string    `json:"project-objective_new,omitempty"`
	References     StringList `json:"references,omitempty"`
	ReferencesText *string    `json:"references_new,omitempty"`
	WorkElements   StringList `json:"work-elements,omitempty"`
	WorkElemsText  *string    `json:"work-elements_new,omitempty"`
	TimeSchedule   StringList `json:"time-schedule,omitempty"`
	TimeSchedText  *string    `json:"time-schedule_new,omitempty"`
	Deliverables   StringList `json:"deliverables,omitempty"`
	DeliverText    *string    `json:"deliverables_new,omitempty"`
	OutsideExperts StringList `json:"outside-experts,omitempty"`
	ExpertsText    *string    `json:"outside-experts_new,omitempty"`

	Origin              *string `json:"origin-of-proposal,omitempty"`
	Problem             *string `json:"problem-definition,omitempty"`
	InternationalStatus *string `json:"international-status,omitempty"`
	NationalStatus      *string `json:"national-status,omitempty"`
	Importance          *string `json:"importance,omitempty"`
	Methodology         *string `json:"methodology,omitempty"`
	Facilities          *string `json:"facilities,omitempty"`
	ExpectedImpact      *string `json:"expected-impact,omitempty"`

	Designation    *string `json:"designation,omitempty"`
	ECode          *string `json:"e-code,omitempty"`
	Contact        *string `json:"contact,omitempty"`
	Email          *string `json:"email,omitempty"`
	Department     *string `json:"funding-department,omitempty"`
	Specialization *string `json:"area-of-specialization,omitempty"`
	DateOfJoining  *string `json:"date-of-joining,omitempty"`
	DatePhDAward   *string `json:"date-phd-award,omitempty"`

	AdditionalInformation *string `json:"additional-information,omitempty"`

	CoPIs           []CoPI            `json:"coPI,omitempty"`
	Budget          []BudgetCategory  `json:"budget,omitempty"`
	TotalCost       *Amount           `json:"total-cost,omitempty"`
	SupportingFiles []json.RawMessage `json:"proposal-supporting-files,omitempty"`
}

// IsSubmitted reports whether the status is "submitted", ignoring case.
func (s *Submission) IsSubmitted() bool {
	return strings.EqualFold(strings.TrimSpace(s.Status), StatusSubmitted)
}

// Duration is the requested project length.
type Duration struct {
	Days   int `json:"days"`
	Months int `json:"months"`
	Years  int `json:"years"`
}

// TotalMonths normalizes the duration to months; partial months of days are
// dropped.
func (d Duration) TotalMonths() int {
	return d.Years*12 + d.Months + d.Days/30
}

// CoPI is a co-principal investigator.
type CoPI struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	AccessLevel string `json:"accessLevel,omitempty"`
	Role        string `json:"role,omitempty"`
}

// BudgetCategory groups budget lines, e.g. "Recurring" or "Equipment".
type BudgetCategory struct {
	Type  string       `json:"type"`
	Items []BudgetItem `json:"items"`
}

// BudgetItem is one budget line. Total is taken as provided by the applicant
// and is not checked against Years.
type BudgetItem struct {
	Heading       string   `json:"heading"`
	Years         []Amount `json:"years"`
	Total         Amount   `json:"total"`
	Justification string   `json:"justification"`
}

// SubmissionResponse is the display projection of a Submission returned by
// the listing endpoint. Variant fields are flattened to strings.
type SubmissionResponse struct {
	ID                    string            `json:"id"`
	Status                string            `json:"status"`
	Track                 string            `json:"track"`
	TrackCode             *string           `json:"track_code"`
	UniqueID              string            `json:"unique_id"`
	UpdatedAt             string            `json:"updated_at"`
	User                  string            `json:"user"`
	CreatedAt             *string           `json:"created_at"`
	MaxFilled             *int              `json:"max_filled"`
	AdditionalInformation *string           `json:"additional_information"`
	DatePhDAward          *string           `json:"date_phd_award"`
	FundingDepartment     *string           `json:"funding_department"`
	ProjectDuration       *Duration         `json:"project_duration"`
	ProjectKeywords       []string          `json:"project_keywords"`
	ProjectObjective      []string          `json:"project_objective"`
	ProjectObjectiveNew   *string           `json:"project_objective_new"`
	ProjectSummary        *string           `json:"project_summary"`
	ProjectTitle          *string           `json:"project_title"`
	SupportingFiles       []json.RawMessage `json:"proposal_supporting_files"`
	TotalCost             *string           `json:"total_cost"`
	CoPI                  []CoPI            `json:"co_pi"`
	DiscardedAt           *string           `json:"discarded_at"`
}

// NewSubmissionResponse projects a submission for listing.
func NewSubmissionResponse(s *Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:                    s.ID.String(),
		Status:                s.Status,
		Track:                 s.Track,
		TrackCode:             s.TrackCode,
		UniqueID:              s.UniqueID,
		UpdatedAt:             s.UpdatedAt.String(),
		User:                  s.User.String(),
		CreatedAt:             optionalTime(s.CreatedAt),
		MaxFilled:             s.MaxFilled,
		AdditionalInformation: s.AdditionalInformation,
		DatePhDAward:          s.DatePhDAward,
		FundingDepartment:     s.Department,
		ProjectDuration:       s.Duration,
		ProjectKeywords:       s.Keywords,
		ProjectObjective:      s.Objectives,
		ProjectObjectiveNew:   s.ObjectivesText,
		ProjectSummary:        s.Summary,
		ProjectTitle:          s.Title,
		SupportingFiles:       s.SupportingFiles,
		TotalCost:             optionalAmount(s.TotalCost),
		CoPI:                  s.CoPIs,
		DiscardedAt:           optionalTime(s.DiscardedAt),
	}
}

// NewSubmissionResponses projects a list of submissions.
func NewSubmissionResponses(subs []*Submission) []SubmissionResponse {
	out := make([]SubmissionResponse, 0, len(subs))
	for _, s := range subs {
		out = append(out, NewSubmissionResponse(s))
	}
	return out
}

func optionalAmount(a *Amount) *string {
	if a == nil {
		return nil
	}
	s := a.String()
	return &s
}

func optionalTime(t Timestamp) *string {
	if t.IsZero() {
		return nil
	}
	s := t.String()
	return &s
}
