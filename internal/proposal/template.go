package proposal

import (
	"strings"

	"github.com/good-yellow-bee/grantdoc/internal/models"
)

// Field is a typed placeholder in a template line.
type Field int

const (
	FieldNone Field = iota
	FieldTitle
	FieldSubArea
	FieldTotalCost
	FieldDurationMonths
	FieldInvestigator
	FieldDesignation
	FieldECode
	FieldContact
	FieldEmail
	FieldDepartment
	FieldSpecialization
	FieldDateOfJoining
	FieldDatePhDAward
	FieldCoPINames
	FieldCoPIEmails
	FieldSummary
	FieldKeywords
	FieldOrigin
	FieldProblem
	FieldObjectives
	FieldInternationalStatus
	FieldNationalStatus
	FieldImportance
	FieldReferences
	FieldMethodology
	FieldWorkElements
	FieldTimeSchedule
	FieldDeliverables
	FieldFacilities
	FieldOutsideExperts
	FieldExpectedImpact
	FieldAdditionalInformation
)

var resolvers = map[Field]func(*models.Submission) string{
	FieldTitle:          func(s *models.Submission) string { return Text(s.Title) },
	FieldSubArea:        SubArea,
	FieldTotalCost:      TotalCost,
	FieldDurationMonths: DurationMonths,
	FieldInvestigator:   func(s *models.Submission) string { return s.User.String() },
	FieldDesignation:    func(s *models.Submission) string { return Text(s.Designation) },
	FieldECode:          func(s *models.Submission) string { return Text(s.ECode) },
	FieldContact:        func(s *models.Submission) string { return Text(s.Contact) },
	FieldEmail: func(s *models.Submission) string {
		if s.Email != nil {
			return Text(s.Email)
		}
		return s.User.Email
	},
	FieldDepartment:            func(s *models.Submission) string { return Text(s.Department) },
	FieldSpecialization:        func(s *models.Submission) string { return Text(s.Specialization) },
	FieldDateOfJoining:         func(s *models.Submission) string { return Text(s.DateOfJoining) },
	FieldDatePhDAward:          func(s *models.Submission) string { return Text(s.DatePhDAward) },
	FieldCoPINames:             func(s *models.Submission) string { return CoPINames(s.CoPIs) },
	FieldCoPIEmails:            func(s *models.Submission) string { return CoPIEmails(s.CoPIs) },
	FieldSummary:               func(s *models.Submission) string { return Text(s.Summary) },
	FieldKeywords:              Keywords,
	FieldOrigin:                func(s *models.Submission) string { return Text(s.Origin) },
	FieldProblem:               func(s *models.Submission) string { return Text(s.Problem) },
	FieldObjectives:            Objectives,
	FieldInternationalStatus:   func(s *models.Submission) string { return Text(s.InternationalStatus) },
	FieldNationalStatus:        func(s *models.Submission) string { return Text(s.NationalStatus) },
	FieldImportance:            func(s *models.Submission) string { return Text(s.Importance) },
	FieldReferences:            References,
	FieldMethodology:           func(s *models.Submission) string { return Text(s.Methodology) },
	FieldWorkElements:          WorkElements,
	FieldTimeSchedule:          TimeSchedule,
	FieldDeliverables:          Deliverables,
	FieldFacilities:            func(s *models.Submission) string { return Text(s.Facilities) },
	FieldOutsideExperts:        OutsideExperts,
	FieldExpectedImpact:        func(s *models.Submission) string { return Text(s.ExpectedImpact) },
	FieldAdditionalInformation: func(s *models.Submission) string { return Text(s.AdditionalInformation) },
}

// Resolve returns the display string of a field. Unknown fields resolve to "".
func Resolve(f Field, s *models.Submission) string {
	fn, ok := resolvers[f]
	if !ok {
		return ""
	}
	return fn(s)
}

type lineKind int

const (
	lineBlank lineKind = iota
	lineSection
	linePoint
	lineBullet
	lineText
	lineCoPIDetails
	lineBudget
	lineSignatures
)

// line is one entry of an outline template.
type line struct {
	kind  lineKind
	label string
	field Field
	count int
}

func blanks(n int) line {
	return line{kind: lineBlank, count: n}
}

func section(title string) line {
	return line{kind: lineSection, label: title}
}

func point(label string, f Field) line {
	return line{kind: linePoint, label: label, field: f}
}

func bullet(label string, f Field) line {
	return line{kind: lineBullet, label: "   • " + label, field: f}
}

// sectionA is the investigator and administrative part of the outline.
var sectionA = []line{
	section("Section A"),
	blanks(1),
	point("1. Project Title:", FieldTitle),
	point("2. Sub Area:", FieldSubArea),
	point("3. Total Cost:", FieldTotalCost),
	point("4. Duration in months:", FieldDurationMonths),
	point("5. Name of the Investigator:", FieldInvestigator),
	bullet("Designation:", FieldDesignation),
	bullet("E-Code:", FieldECode),
	bullet("Contact:", FieldContact),
	bullet("Email:", FieldEmail),
	bullet("Department / School:", FieldDepartment),
	bullet("Area of Specialization:", FieldSpecialization),
	bullet("Date of Joining the Institute:", FieldDateOfJoining),
	bullet("Date of Award of Ph.D Degree:", FieldDatePhDAward),
	bullet("Co-Investigator(s):", FieldCoPINames),
	bullet("Co-Investigator Email(s):", FieldCoPIEmails),
	{kind: lineCoPIDetails, label: "Details of Co-Investigators:"},
	blanks(3),
}

// sectionB is the research narrative, budget and declaration.
var sectionB = []line{
	section("Section B"),
	blanks(1),
	point("6. Project Title:", FieldTitle),
	point("7. Project summary (maximum 500 words):", FieldSummary),
	point("8. Key words:", FieldKeywords),
	point("9. Introduction (under the following heads):", FieldNone),
	bullet("Origin of the proposal:", FieldOrigin),
	bullet("Definition of the problem:", FieldProblem),
	bullet("Objective:", FieldObjectives),
	point("10. Review and status of Research and Development in the subject:", FieldNone),
	bullet("International Status:", FieldInternationalStatus),
	bullet("National Status:", FieldNationalStatus),
	bullet("Importance of the proposed project in the context of current status:", FieldImportance),
	bullet("References:", FieldReferences),
	point("11. Work plan:", FieldNone),
	bullet("Methodology:", FieldMethodology),
	bullet("Organization of work elements:", FieldWorkElements),
	bullet("Time schedule of activities giving milestones:", FieldTimeSchedule),
	bullet("Deliverables:", FieldDeliverables),
	point("12. Facilities, expertise and expected impact:", FieldNone),
	bullet("Facilities available at the Institute:", FieldFacilities),
	bullet("Names of outside experts (if any):", FieldOutsideExperts),
	bullet("Expected outcome and impact:", FieldExpectedImpact),
	bullet("Additional information:", FieldAdditionalInformation),
	blanks(1),
	point("13. Budget requirement with justification (Consumables, Equipment, Contingency):", FieldNone),
	blanks(1),
	{kind: lineBudget},
	blanks(2),
	point("14. Declaration:", FieldNone),
	{kind: lineText, label: declarationText},
	blanks(2),
	{kind: lineSignatures},
}

const declarationText = "We hereby declare that the information furnished in this proposal is true " +
	"to the best of our knowledge, that no financial support for the same work has been sought " +
	"from any other agency, and that the project, if sanctioned, will be carried out in accordance " +
	"with the rules of the Institute."

// Options carries the institution-specific boilerplate of the document.
type Options struct {
	// Banner is the programme name shown on the cover.
	Banner string
	// Institution lines close the cover page; the first is the addressee.
	Institution []string
	// Approvers sign below the investigators in the declaration.
	Approvers []string
}

// DefaultOptions returns the boilerplate of the seed-money programme.
func DefaultOptions() Options {
	return Options{
		Banner: "SEED MONEY GRANT PROPOSAL",
		Institution: []string{
			"Dean, Research and Development",
			"THAPAR INSTITUTE OF ENGINEERING & TECHNOLOGY",
			"BHADSON ROAD",
			"PATIALA-147004",
		},
		Approvers: []string{
			"Head of Department / School",
			"Dean, Research and Development",
		},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if strings.TrimSpace(o.Banner) == "" {
		o.Banner = d.Banner
	}
	if len(o.Institution) == 0 {
		o.Institution = d.Institution
	}
	if len(o.Approvers) == 0 {
		o.Approvers = d.Approvers
	}
	return o
}
