// Package generator runs the submission to proposal pipeline: assemble the
// content, pack it as .docx, convert it to PDF and hand back the bytes.
package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/good-yellow-bee/grantdoc/internal/docx"
	"github.com/good-yellow-bee/grantdoc/internal/metrics"
	"github.com/good-yellow-bee/grantdoc/internal/models"
	"github.com/good-yellow-bee/grantdoc/internal/proposal"
)

// ErrFileIO is returned when a temporary or output file cannot be written
// or read.
var ErrFileIO = errors.New("file i/o failed")

// Format is the requested output format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDocx Format = "docx"
)

// PDFContentType is the MIME type of generated PDFs.
const PDFContentType = "application/pdf"

// ParseFormat maps a query value to a Format. Empty means PDF.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pdf":
		return FormatPDF, nil
	case "docx":
		return FormatDocx, nil
	default:
		return "", fmt.Errorf("unsupported format %q", s)
	}
}

// Converter turns a .docx file into a PDF.
type Converter interface {
	Convert(ctx context.Context, docxPath, outDir, outName string) (string, error)
}

// Recorder stores generation audit records.
type Recorder interface {
	Create(ctx context.Context, rec *models.GenerationRecord) error
}

// LogoSource provides the cover-page logo.
type LogoSource interface {
	Logo() []byte
}

// Config configures the generator.
type Config struct {
	// TempDir receives the intermediate .docx files.
	TempDir string
	// OutputDir receives converted PDFs.
	OutputDir string
	// KeepOutput leaves proposal_<unique_id>.pdf in OutputDir after the
	// bytes are read back.
	KeepOutput bool
	// Font is the document default font.
	Font string
	// Proposal carries the cover page wording.
	Proposal proposal.Options
}

// Request describes one generation.
type Request struct {
	Source models.GenerationSource
	Format Format
}

// Result is a generated document.
type Result struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Generator produces proposal documents.
type Generator struct {
	cfg       Config
	writer    *docx.Writer
	converter Converter
	logo      LogoSource
	recorder  Recorder
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a Generator. logo and recorder may be nil.
func New(cfg Config, writer *docx.Writer, converter Converter, logo LogoSource, recorder Recorder, logger *zap.Logger) *Generator {
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = cfg.TempDir
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		cfg:       cfg,
		writer:    writer,
		converter: converter,
		logo:      logo,
		recorder:  recorder,
		logger:    logger.Named("generator"),
		now:       time.Now,
	}
}

// Assemble builds the content blocks for s.
func (g *Generator) Assemble(s *models.Submission) proposal.Document {
	return proposal.Assemble(s, g.cfg.Proposal)
}

// Generate renders s in the requested format.
func (g *Generator) Generate(ctx context.Context, s *models.Submission, req Request) (*Result, error) {
	if req.Format == "" {
		req.Format = FormatPDF
	}
	if req.Source == "" {
		req.Source = models.SourceUpload
	}

	start := g.now()
	res, err := g.generate(ctx, s, req)
	g.finish(ctx, s, req, start, res, err)
	return res, err
}

func (g *Generator) generate(ctx context.Context, s *models.Submission, req Request) (*Result, error) {
	doc := g.Assemble(s)
	media := docx.Media{}
	if g.logo != nil {
		if logo := g.logo.Logo(); len(logo) > 0 {
			media[proposal.ImageLogo] = logo
		}
	}
	meta := docx.Meta{
		Title:   proposal.Text(s.Title),
		Creator: s.User.String(),
		Font:    g.cfg.Font,
	}

	if req.Format == FormatDocx {
		data, err := g.writer.Bytes(doc, media, meta)
		if err != nil {
			return nil, fmt.Errorf("%w: build document: %v", ErrFileIO, err)
		}
		return &Result{FileName: FileName(s, FormatDocx), ContentType: docx.ContentType, Data: data}, nil
	}

	docxPath := filepath.Join(g.cfg.TempDir, TempName(g.now()))
	if err := g.writeDocx(docxPath, doc, media, meta); err != nil {
		return nil, err
	}
	defer g.remove(docxPath)

	if err := os.MkdirAll(g.cfg.OutputDir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: create output dir: %v", ErrFileIO, err)
	}
	pdfPath, err := g.converter.Convert(ctx, docxPath, g.cfg.OutputDir, "")
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(pdfPath)
	if err != nil {
		g.remove(pdfPath)
		return nil, fmt.Errorf("%w: read pdf: %v", ErrFileIO, err)
	}

	name := FileName(s, FormatPDF)
	if g.cfg.KeepOutput {
		if err := os.Rename(pdfPath, filepath.Join(g.cfg.OutputDir, name)); err != nil {
			g.logger.Warn("failed to keep output", zap.String("path", pdfPath), zap.Error(err))
			g.remove(pdfPath)
		}
	} else {
		g.remove(pdfPath)
	}

	return &Result{FileName: name, ContentType: PDFContentType, Data: data}, nil
}

func (g *Generator) writeDocx(path string, doc proposal.Document, media docx.Media, meta docx.Meta) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("%w: create temp dir: %v", ErrFileIO, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrFileIO, err)
	}
	if err := g.writer.Write(f, doc, media, meta); err != nil {
		f.Close()
		g.remove(path)
		return fmt.Errorf("%w: write temp file: %v", ErrFileIO, err)
	}
	if err := f.Close(); err != nil {
		g.remove(path)
		return fmt.Errorf("%w: close temp file: %v", ErrFileIO, err)
	}
	return nil
}

// remove deletes a temporary file. Failures are logged only.
func (g *Generator) remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		g.logger.Warn("failed to remove temporary file", zap.String("path", path), zap.Error(err))
	}
}

func (g *Generator) finish(ctx context.Context, s *models.Submission, req Request, start time.Time, res *Result, err error) {
	elapsed := g.now().Sub(start)
	format := string(req.Format)

	metrics.DocumentsGenerated.WithLabelValues(string(req.Source), format, metrics.Result(err)).Inc()

	rec := &models.GenerationRecord{
		ID:           uuid.New().String(),
		SubmissionID: s.ID.String(),
		UniqueID:     s.UniqueID,
		Source:       req.Source,
		Format:       format,
		Status:       models.GenerationSuccess,
		DurationMS:   elapsed.Milliseconds(),
		CreatedAt:    start.UTC(),
	}
	if err != nil {
		rec.Status = models.GenerationFailed
		rec.Error = err.Error()
		g.logger.Error("generation failed",
			zap.String("unique_id", s.UniqueID),
			zap.String("source", string(req.Source)),
			zap.String("format", format),
			zap.Error(err))
	} else {
		rec.FileName = res.FileName
		rec.Bytes = int64(len(res.Data))
		metrics.DocumentBytes.WithLabelValues(format).Observe(float64(len(res.Data)))
		g.logger.Info("document generated",
			zap.String("unique_id", s.UniqueID),
			zap.String("source", string(req.Source)),
			zap.String("file", res.FileName),
			zap.Int("bytes", len(res.Data)),
			zap.Duration("duration", elapsed))
	}

	if g.recorder == nil {
		return
	}
	// The audit write must not be lost when the client disconnects.
	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := g.recorder.Create(auditCtx, rec); err != nil {
		g.logger.Warn("failed to record generation", zap.String("unique_id", s.UniqueID), zap.Error(err))
	}
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName returns proposal_<unique_id> with the format's extension.
// Characters unsafe in file names are replaced.
func FileName(s *models.Submission, format Format) string {
	id := strings.TrimSpace(s.UniqueID)
	if id == "" {
		id = s.ID.String()
	}
	id = strings.Trim(unsafeName.ReplaceAllString(id, "_"), "._")
	if id == "" {
		id = "submission"
	}
	ext := "pdf"
	if format == FormatDocx {
		ext = "docx"
	}
	return fmt.Sprintf("proposal_%s.%s", id, ext)
}

// TempName returns a request-unique container name:
// temp_<yyyymmddhhmmss>_<8 hex chars>.docx.
func TempName(now time.Time) string {
	return fmt.Sprintf("temp_%s_%s.docx", now.Format("20060102150405"), uuid.New().String()[:8])
}
