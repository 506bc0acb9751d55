// Package docx packs assembled proposal content into an Office Open XML
// (.docx) container.
package docx

import (
	"archive/zip"
	"bytes"
	"embed"
	"encoding/xml"
	"fmt"
	"image"
	_ "image/png" // logo decoding
	"io"
	"sort"
	"strings"
	"text/template"

	"github.com/good-yellow-bee/grantdoc/internal/proposal"
)

//go:embed templates/*
var templateFS embed.FS

// A4 portrait in twentieths of a point, with one-inch margins.
const (
	pageWidth  = 11906
	pageHeight = 16838
	margin     = 1440
	textWidth  = pageWidth - 2*margin

	// EMUs per pixel at 96 dpi.
	emuPerPixel = 9525
	// Images wider than this are scaled down, in pixels.
	maxImageWidth = 180
)

// ContentType is the MIME type of a .docx file.
const ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Media maps image block names to PNG bytes. Blocks whose image is missing
// or undecodable are left out of the document.
type Media map[string][]byte

// Meta is written to the package core properties.
type Meta struct {
	Title   string
	Creator string
	Font    string
}

type imageRef struct {
	Name   string
	RelID  string
	File   string
	Data   []byte
	Width  int
	Height int
}

// Writer renders documents using the embedded package parts.
type Writer struct {
	tmpl *template.Template
}

// NewWriter parses the embedded templates.
func NewWriter() (*Writer, error) {
	funcs := template.FuncMap{
		"xml": escape,
	}
	tmpl, err := template.New("docx").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse docx templates: %w", err)
	}
	return &Writer{tmpl: tmpl}, nil
}

// Write packs doc into w.
func (dw *Writer) Write(w io.Writer, doc proposal.Document, media Media, meta Meta) error {
	if meta.Font == "" {
		meta.Font = "Calibri"
	}
	images := resolveImages(media)

	var body strings.Builder
	writeBlocks(&body, doc.Blocks, images)

	zw := zip.NewWriter(w)
	parts := []struct {
		name string
		tmpl string
		data any
	}{
		{"[Content_Types].xml", "content_types.xml.tmpl", map[string]any{"Images": len(images) > 0}},
		{"_rels/.rels", "rels.xml.tmpl", nil},
		{"docProps/core.xml", "core.xml.tmpl", meta},
		{"word/_rels/document.xml.rels", "document_rels.xml.tmpl", map[string]any{"Images": sortedImages(images)}},
		{"word/styles.xml", "styles.xml.tmpl", map[string]any{"Font": meta.Font, "Size": proposal.SizeBody}},
		{"word/document.xml", "document.xml.tmpl", map[string]any{
			"Body":       body.String(),
			"PageWidth":  pageWidth,
			"PageHeight": pageHeight,
			"Margin":     margin,
		}},
	}

	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("create %s: %w", p.name, err)
		}
		if err := dw.tmpl.ExecuteTemplate(f, p.tmpl, p.data); err != nil {
			return fmt.Errorf("render %s: %w", p.name, err)
		}
	}

	for _, img := range sortedImages(images) {
		f, err := zw.Create("word/media/" + img.File)
		if err != nil {
			return fmt.Errorf("create media %s: %w", img.File, err)
		}
		if _, err := f.Write(img.Data); err != nil {
			return fmt.Errorf("write media %s: %w", img.File, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("close container: %w", err)
	}
	return nil
}

// Bytes is a convenience wrapper around Write.
func (dw *Writer) Bytes(doc proposal.Document, media Media, meta Meta) ([]byte, error) {
	var buf bytes.Buffer
	if err := dw.Write(&buf, doc, media, meta); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func resolveImages(media Media) map[string]*imageRef {
	images := make(map[string]*imageRef)
	names := make([]string, 0, len(media))
	for name := range media {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		data := media[name]
		cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil || format != "png" || cfg.Width == 0 || cfg.Height == 0 {
			continue
		}
		w, h := cfg.Width, cfg.Height
		if w > maxImageWidth {
			h = h * maxImageWidth / w
			w = maxImageWidth
		}
		images[name] = &imageRef{
			Name:   name,
			RelID:  fmt.Sprintf("rIdImage%d", i+1),
			File:   fmt.Sprintf("image%d.png", i+1),
			Data:   data,
			Width:  w,
			Height: h,
		}
	}
	return images
}

func sortedImages(images map[string]*imageRef) []*imageRef {
	out := make([]*imageRef, 0, len(images))
	for _, img := range images {
		out = append(out, img)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RelID < out[j].RelID })
	return out
}

func writeBlocks(b *strings.Builder, blocks []proposal.Block, images map[string]*imageRef) {
	drawingID := 0
	for _, block := range blocks {
		switch block.Kind {
		case proposal.KindParagraph:
			if block.Paragraph != nil {
				writeParagraph(b, block.Paragraph)
			}
		case proposal.KindPageBreak:
			b.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
		case proposal.KindImage:
			img, ok := images[block.Image]
			if !ok {
				continue
			}
			drawingID++
			writeImage(b, img, drawingID)
		case proposal.KindTable:
			if block.Table != nil {
				writeTable(b, block.Table)
			}
		}
	}
}

func writeParagraph(b *strings.Builder, p *proposal.Paragraph) {
	b.WriteString("<w:p>")
	if p.Align == proposal.AlignCenter {
		b.WriteString(`<w:pPr><w:jc w:val="center"/></w:pPr>`)
	}
	for _, r := range p.Runs {
		writeRun(b, r)
	}
	b.WriteString("</w:p>")
}

func writeRun(b *strings.Builder, r proposal.Run) {
	b.WriteString("<w:r>")
	if r.Bold || r.Color != "" || r.Size > 0 {
		b.WriteString("<w:rPr>")
		if r.Bold {
			b.WriteString("<w:b/><w:bCs/>")
		}
		if r.Color != "" {
			fmt.Fprintf(b, `<w:color w:val="%s"/>`, escape(strings.TrimPrefix(r.Color, "#")))
		}
		if r.Size > 0 {
			fmt.Fprintf(b, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, r.Size, r.Size)
		}
		b.WriteString("</w:rPr>")
	}
	b.WriteString(`<w:t xml:space="preserve">`)
	b.WriteString(escape(r.Text))
	b.WriteString("</w:t></w:r>")
}

func writeImage(b *strings.Builder, img *imageRef, id int) {
	cx, cy := img.Width*emuPerPixel, img.Height*emuPerPixel
	fmt.Fprintf(b, `<w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:drawing>`+
		`<wp:inline distT="0" distB="0" distL="0" distR="0">`+
		`<wp:extent cx="%d" cy="%d"/><wp:docPr id="%d" name="Picture %d"/>`+
		`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:pic><pic:nvPicPr><pic:cNvPr id="%d" name="%s"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm>`+
		`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr></pic:pic>`+
		`</a:graphicData></a:graphic></wp:inline></w:drawing></w:r></w:p>`,
		cx, cy, id, id, id, escape(img.File), img.RelID, cx, cy)
}

func writeTable(b *strings.Builder, t *proposal.Table) {
	b.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="5000" w:type="pct"/><w:tblBorders>`)
	for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		fmt.Fprintf(b, `<w:%s w:val="single" w:sz="4" w:space="0" w:color="auto"/>`, side)
	}
	b.WriteString(`</w:tblBorders><w:tblLayout w:type="fixed"/></w:tblPr><w:tblGrid>`)
	for _, w := range t.Widths {
		fmt.Fprintf(b, `<w:gridCol w:w="%d"/>`, w*textWidth/100)
	}
	b.WriteString("</w:tblGrid>")

	for _, row := range t.Rows {
		b.WriteString("<w:tr>")
		for i, cell := range row.Cells {
			b.WriteString("<w:tc>")
			if i < len(t.Widths) {
				fmt.Fprintf(b, `<w:tcPr><w:tcW w:w="%d" w:type="dxa"/></w:tcPr>`, t.Widths[i]*textWidth/100)
			}
			b.WriteString("<w:p>")
			if cell.Text != "" {
				writeRun(b, proposal.Run{Text: cell.Text, Bold: cell.Bold, Size: proposal.SizeTable, Color: proposal.BodyColor})
			}
			b.WriteString("</w:p></w:tc>")
		}
		b.WriteString("</w:tr>")
	}
	b.WriteString("</w:tbl>")
}

func escape(s string) string {
	var buf strings.Builder
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return ""
	}
	return buf.String()
}
