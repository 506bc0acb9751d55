package proposal

import "github.com/good-yellow-bee/grantdoc/internal/models"

// Assemble builds the full proposal: cover page, page break, then the
// Section A / Section B outline with the budget table and declaration.
// It is a pure function of its inputs and never fails; missing data renders
// as empty text.
func Assemble(s *models.Submission, opts Options) Document {
	opts = opts.withDefaults()

	blocks := Cover(s, opts)
	blocks = append(blocks, pageBreak())
	blocks = append(blocks, Outline(s, opts)...)
	return Document{Blocks: blocks}
}

// Cover builds the title page.
func Cover(s *models.Submission, opts Options) []Block {
	opts = opts.withDefaults()

	blocks := []Block{centered(Resolve(FieldTitle, s), SizeTitle)}
	blocks = appendBlanks(blocks, 3)
	blocks = append(blocks, centered(opts.Banner, SizeTitle))
	blocks = appendBlanks(blocks, 3)
	blocks = append(blocks, imageBlock(ImageLogo))
	blocks = appendBlanks(blocks, 2)
	blocks = append(blocks,
		centered(Resolve(FieldInvestigator, s), SizeTitle),
		emptyLine(),
		centered("Principal Investigator", SizeTitle),
	)
	blocks = appendBlanks(blocks, 2)

	if len(s.CoPIs) > 0 {
		blocks = append(blocks,
			centered(CoverNames(s.CoPIs), SizeBanner),
			emptyLine(),
			centered("Co-Principal Investigator(s)", SizeBanner),
		)
		blocks = appendBlanks(blocks, 8)
	} else {
		blocks = appendBlanks(blocks, 11)
	}

	for i, text := range opts.Institution {
		size := SizeBanner
		if i == 0 {
			size = SizeTitle
		}
		blocks = append(blocks, centered(text, size))
		if i == 0 {
			blocks = appendBlanks(blocks, 2)
		}
	}
	return blocks
}

// Outline builds Section A and Section B.
func Outline(s *models.Submission, opts Options) []Block {
	opts = opts.withDefaults()

	var blocks []Block
	blocks = renderLines(blocks, sectionA, s, opts)
	blocks = renderLines(blocks, sectionB, s, opts)
	return blocks
}

func renderLines(blocks []Block, lines []line, s *models.Submission, opts Options) []Block {
	for _, l := range lines {
		switch l.kind {
		case lineBlank:
			blocks = appendBlanks(blocks, l.count)
		case lineSection:
			blocks = append(blocks, centered(l.label, SizeTitle))
		case linePoint, lineBullet:
			blocks = append(blocks, body(l.label, Resolve(l.field, s)))
		case lineText:
			blocks = append(blocks, plain(l.label))
		case lineCoPIDetails:
			blocks = appendCoPIDetails(blocks, l.label, s.CoPIs)
		case lineBudget:
			blocks = append(blocks, tableBlock(BudgetTable(s)))
		case lineSignatures:
			blocks = appendSignatures(blocks, s, opts)
		}
	}
	return blocks
}

// appendCoPIDetails adds the co-investigator elaboration block. A single
// co-investigator is fully covered by the inline bullets of point 5, so the
// block only appears from two co-investigators on.
func appendCoPIDetails(blocks []Block, heading string, coPIs []models.CoPI) []Block {
	if len(coPIs) < 2 {
		return blocks
	}
	blocks = append(blocks, body(heading, ""))
	for _, c := range coPIs {
		blocks = append(blocks, plain("   • "+CoPIDetail(c)))
	}
	return blocks
}

func appendSignatures(blocks []Block, s *models.Submission, opts Options) []Block {
	blocks = append(blocks, body("Signature of the Principal Investigator:", Resolve(FieldInvestigator, s)))
	for _, c := range s.CoPIs {
		blocks = append(blocks, body("Signature of the Co-Investigator:", c.Name))
	}
	blocks = appendBlanks(blocks, 2)
	for _, approver := range opts.Approvers {
		blocks = append(blocks, body("Recommended by "+approver+":", ""))
	}
	return blocks
}

func appendBlanks(blocks []Block, n int) []Block {
	for i := 0; i < n; i++ {
		blocks = append(blocks, emptyLine())
	}
	return blocks
}
