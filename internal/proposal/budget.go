package proposal

import "github.com/good-yellow-bee/grantdoc/internal/models"

// Default category labels used when a submission carries no budget.
var defaultCategories = []string{"Recurring", "Non-Recurring"}

var budgetHeader = []string{"", "Item", "1st Year", "2nd Year", "3rd Year", "Total", "Justification"}

var budgetWidths = []int{6, 22, 11, 11, 11, 12, 27}

// CategorySummary is one budget category with its computed total.
type CategorySummary struct {
	Label    string
	Type     string
	Items    []models.BudgetItem
	Subtotal float64
}

// Budget is the aggregated budget of a submission.
type Budget struct {
	Categories []CategorySummary
	GrandTotal float64
	// Present is false when the submission has no budget categories at all.
	Present bool
}

// ItemTotal returns the stated total of a line item, or 0 when it is not a
// number. Per-year amounts are not summed or cross-checked.
func ItemTotal(item models.BudgetItem) float64 {
	return item.Total.Float()
}

// GrandTotal sums the stated totals of every item in every category.
func GrandTotal(categories []models.BudgetCategory) float64 {
	var total float64
	for _, c := range categories {
		for _, item := range c.Items {
			total += ItemTotal(item)
		}
	}
	return total
}

// Summarize aggregates categories in list order.
func Summarize(categories []models.BudgetCategory) Budget {
	b := Budget{Present: len(categories) > 0}
	for i, c := range categories {
		cs := CategorySummary{Label: CategoryLabel(i), Type: c.Type, Items: c.Items}
		for _, item := range c.Items {
			cs.Subtotal += ItemTotal(item)
		}
		b.GrandTotal += cs.Subtotal
		b.Categories = append(b.Categories, cs)
	}
	return b
}

// CategoryLabel returns the spreadsheet-style letter for the i-th category:
// A..Z, AA, AB, ...
func CategoryLabel(i int) string {
	label := ""
	for n := i + 1; n > 0; n = (n - 1) / 26 {
		label = string(rune('A'+(n-1)%26)) + label
	}
	return label
}

// TotalCost returns the display value of the project cost: the budget grand
// total when budget data exists, else the stated total-cost field as
// provided, else "".
func TotalCost(s *models.Submission) string {
	if len(s.Budget) > 0 {
		return FormatAmount(GrandTotal(s.Budget))
	}
	if s.TotalCost != nil {
		return AmountText(*s.TotalCost)
	}
	return ""
}

// BudgetTable builds the budget table for a submission. Without budget data
// it returns the Recurring / Non-Recurring skeleton so the document keeps
// the same shape.
func BudgetTable(s *models.Submission) *Table {
	t := &Table{Widths: budgetWidths}
	t.Rows = append(t.Rows, headerRow(budgetHeader))

	b := Summarize(s.Budget)
	if !b.Present {
		for i, name := range defaultCategories {
			t.Rows = append(t.Rows, categoryRow(CategoryLabel(i), name, ""))
			t.Rows = append(t.Rows, blankRow(len(budgetHeader)))
		}
		t.Rows = append(t.Rows, totalRow(TotalCost(s)))
		return t
	}

	for _, c := range b.Categories {
		t.Rows = append(t.Rows, categoryRow(c.Label, c.Type, FormatAmount(c.Subtotal)))
		for _, item := range c.Items {
			t.Rows = append(t.Rows, itemRow(item))
		}
		t.Rows = append(t.Rows, blankRow(len(budgetHeader)))
	}
	t.Rows = append(t.Rows, totalRow(FormatAmount(b.GrandTotal)))
	return t
}

func headerRow(titles []string) Row {
	cells := make([]Cell, len(titles))
	for i, title := range titles {
		cells[i] = Cell{Text: title, Bold: true}
	}
	return Row{Cells: cells}
}

func categoryRow(label, name, subtotal string) Row {
	return Row{Cells: []Cell{
		{Text: label, Bold: true},
		{Text: name, Bold: true},
		{}, {}, {},
		{Text: subtotal, Bold: true},
		{},
	}}
}

func itemRow(item models.BudgetItem) Row {
	years := YearCells(item.Years)
	return Row{Cells: []Cell{
		{},
		{Text: item.Heading},
		{Text: years[0]},
		{Text: years[1]},
		{Text: years[2]},
		{Text: AmountText(item.Total)},
		{Text: item.Justification},
	}}
}

func totalRow(total string) Row {
	return Row{Cells: []Cell{
		{},
		{Text: "Grand Total", Bold: true},
		{}, {}, {},
		{Text: total, Bold: true},
		{},
	}}
}

func blankRow(cols int) Row {
	return Row{Cells: make([]Cell, cols)}
}
