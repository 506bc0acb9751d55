// Package proposal turns a grant submission into the ordered content blocks
// of the seed-money proposal document.
package proposal

// BlockKind identifies the type of a content block.
type BlockKind string

const (
	KindParagraph BlockKind = "paragraph"
	KindImage     BlockKind = "image"
	KindPageBreak BlockKind = "page_break"
	KindTable     BlockKind = "table"
)

// Alignment is the horizontal alignment of a paragraph.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
)

// Font sizes are in half-points, as in OOXML.
const (
	SizeTitle  = 48
	SizeBanner = 36
	SizeBody   = 28
	SizeTable  = 22
	BodyColor  = "2C3E50"
)

// ImageLogo is the asset name of the institution logo.
const ImageLogo = "logo"

// Run is a span of text with uniform formatting.
type Run struct {
	Text  string `json:"text"`
	Bold  bool   `json:"bold,omitempty"`
	Size  int    `json:"size,omitempty"`
	Color string `json:"color,omitempty"`
}

// Paragraph is a line of runs.
type Paragraph struct {
	Align Alignment `json:"align,omitempty"`
	Runs  []Run     `json:"runs,omitempty"`
}

// Text returns the concatenated text of all runs.
func (p *Paragraph) Text() string {
	var s string
	for _, r := range p.Runs {
		s += r.Text
	}
	return s
}

// Cell is a table cell holding plain text.
type Cell struct {
	Text string `json:"text"`
	Bold bool   `json:"bold,omitempty"`
}

// Row is a table row.
type Row struct {
	Cells []Cell `json:"cells"`
}

// Table is a grid with column widths given in percent of the page width.
type Table struct {
	Widths []int `json:"widths"`
	Rows   []Row `json:"rows"`
}

// Block is one unit of document content. Exactly one of Paragraph, Image or
// Table is set, according to Kind; page breaks carry no payload.
type Block struct {
	Kind      BlockKind  `json:"kind"`
	Paragraph *Paragraph `json:"paragraph,omitempty"`
	Image     string     `json:"image,omitempty"`
	Table     *Table     `json:"table,omitempty"`
}

// Document is the assembled proposal.
type Document struct {
	Blocks []Block `json:"blocks"`
}

// Paragraphs returns the paragraph blocks in order, skipping everything else.
func (d *Document) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for i := range d.Blocks {
		if d.Blocks[i].Kind == KindParagraph {
			out = append(out, d.Blocks[i].Paragraph)
		}
	}
	return out
}

// Tables returns the table blocks in order.
func (d *Document) Tables() []*Table {
	var out []*Table
	for i := range d.Blocks {
		if d.Blocks[i].Kind == KindTable {
			out = append(out, d.Blocks[i].Table)
		}
	}
	return out
}

func emptyLine() Block {
	return Block{Kind: KindParagraph, Paragraph: &Paragraph{}}
}

func pageBreak() Block {
	return Block{Kind: KindPageBreak}
}

func imageBlock(name string) Block {
	return Block{Kind: KindImage, Image: name}
}

func tableBlock(t *Table) Block {
	return Block{Kind: KindTable, Table: t}
}

// centered returns a bold centered line used on the cover and section titles.
func centered(text string, size int) Block {
	return Block{Kind: KindParagraph, Paragraph: &Paragraph{
		Align: AlignCenter,
		Runs:  []Run{{Text: text, Bold: true, Size: size}},
	}}
}

// body returns a body line. A non-empty content is appended after the heading
// as a separate plain run.
func body(heading, content string) Block {
	runs := []Run{{Text: heading, Bold: true, Size: SizeBody, Color: BodyColor}}
	if content != "" {
		runs = append(runs, Run{Text: " " + content, Size: SizeBody, Color: BodyColor})
	}
	return Block{Kind: KindParagraph, Paragraph: &Paragraph{Align: AlignLeft, Runs: runs}}
}

// plain returns an unemphasized body line.
func plain(text string) Block {
	return Block{Kind: KindParagraph, Paragraph: &Paragraph{
		Align: AlignLeft,
		Runs:  []Run{{Text: text, Size: SizeBody, Color: BodyColor}},
	}}
}
