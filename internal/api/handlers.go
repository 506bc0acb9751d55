package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/good-yellow-bee/grantdoc/internal/api/middleware"
	"github.com/good-yellow-bee/grantdoc/internal/generator"
	"github.com/good-yellow-bee/grantdoc/internal/models"
	"github.com/good-yellow-bee/grantdoc/internal/storage"
	"github.com/good-yellow-bee/grantdoc/internal/upstream"
)

// FetchSubmissions handles GET /fetch-submissions.
func (s *Server) FetchSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, ok := s.fetch(w, r)
	if !ok {
		return
	}

	if status := r.URL.Query().Get("status"); status != "" {
		filtered := make([]*models.Submission, 0, len(subs))
		for _, sub := range subs {
			if strings.EqualFold(sub.Status, status) {
				filtered = append(filtered, sub)
			}
		}
		subs = filtered
	}

	OK(w, SubmissionsResponse{
		Submissions: models.NewSubmissionResponses(subs),
		Total:       len(subs),
	})
}

// GenerateFirst handles GET /generate: the first submitted application.
func (s *Server) GenerateFirst(w http.ResponseWriter, r *http.Request) {
	format, ok := parseFormat(w, r)
	if !ok {
		return
	}
	subs, ok := s.fetch(w, r)
	if !ok {
		return
	}

	sub, err := upstream.FirstSubmitted(subs)
	if err != nil {
		JSONError(w, ErrNoSubmittedRecord)
		return
	}
	s.generate(w, r, sub, generator.Request{Source: models.SourceFetch, Format: format})
}

// GenerateByID handles GET /generate/{uniqueID}.
func (s *Server) GenerateByID(w http.ResponseWriter, r *http.Request) {
	format, ok := parseFormat(w, r)
	if !ok {
		return
	}
	uniqueID := chi.URLParam(r, "uniqueID")
	subs, ok := s.fetch(w, r)
	if !ok {
		return
	}

	sub, err := upstream.FindByUniqueID(subs, uniqueID)
	if err != nil {
		JSONError(w, NewNotFound("No application with unique id "+strconv.Quote(uniqueID)))
		return
	}
	s.generate(w, r, sub, generator.Request{Source: models.SourceFetch, Format: format})
}

// GenerateUpload handles POST /generate-pdf with a submission body.
func (s *Server) GenerateUpload(w http.ResponseWriter, r *http.Request) {
	format, ok := parseFormat(w, r)
	if !ok {
		return
	}
	sub, ok := decodeSubmission(w, r)
	if !ok {
		return
	}
	s.generate(w, r, sub, generator.Request{Source: models.SourceUpload, Format: format})
}

// Preview handles POST /preview: the assembled blocks without rendering.
func (s *Server) Preview(w http.ResponseWriter, r *http.Request) {
	sub, ok := decodeSubmission(w, r)
	if !ok {
		return
	}
	doc := s.generator.Assemble(sub)
	OK(w, PreviewResponse{
		FileName: generator.FileName(sub, generator.FormatPDF),
		Blocks:   doc.Blocks,
	})
}

// ListGenerations handles GET /generations.
func (s *Server) ListGenerations(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		JSONError(w, ErrAuditDisabled)
		return
	}

	q := r.URL.Query()
	page := parsePositiveInt(q.Get("page"), 1)
	perPage := parsePositiveInt(q.Get("per_page"), 20)
	if perPage > 100 {
		perPage = 100
	}

	filter := storage.GenerationFilter{
		UniqueID: q.Get("unique_id"),
		Status:   models.GenerationStatus(q.Get("status")),
		Limit:    perPage,
		Offset:   (page - 1) * perPage,
	}
	records, total, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("list generations failed", zap.Error(err))
		JSONError(w, ErrInternalServer)
		return
	}
	if records == nil {
		records = []*models.GenerationRecord{}
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	OK(w, PaginatedResponse{
		Items:      records,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	})
}

// GenerationStats handles GET /generations/stats.
func (s *Server) GenerationStats(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		JSONError(w, ErrAuditDisabled)
		return
	}
	stats, err := s.audit.Stats(r.Context())
	if err != nil {
		s.logger.Error("generation stats failed", zap.Error(err))
		JSONError(w, ErrInternalServer)
		return
	}
	OK(w, stats)
}

func (s *Server) fetch(w http.ResponseWriter, r *http.Request) ([]*models.Submission, bool) {
	if s.submissions == nil {
		JSONError(w, ErrUpstreamDisabled)
		return nil, false
	}
	subs, err := s.submissions.FetchSubmissions(r.Context())
	if err != nil {
		s.logger.Warn("fetch submissions failed",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err))
		JSONError(w, errorFor(err))
		return nil, false
	}
	return subs, true
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request, sub *models.Submission, req generator.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.config.GenerateTimeout)
	defer cancel()

	res, err := s.generator.Generate(ctx, sub, req)
	if err != nil {
		s.logger.Warn("generate failed",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.String("unique_id", sub.UniqueID),
			zap.Error(err))
		JSONError(w, errorFor(err))
		return
	}
	Attachment(w, res)
}

func parseFormat(w http.ResponseWriter, r *http.Request) (generator.Format, bool) {
	format, err := generator.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		JSONError(w, NewBadRequest("format must be pdf or docx"))
		return "", false
	}
	return format, true
}

// decodeSubmission reads a submission from the request body. Unknown fields
// are accepted since the upstream schema keeps growing.
func decodeSubmission(w http.ResponseWriter, r *http.Request) (*models.Submission, bool) {
	var sub models.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			JSONError(w, NewBadRequest("request body too large"))
		case errors.Is(err, io.EOF):
			JSONError(w, NewBadRequest("request body is empty"))
		default:
			JSONError(w, NewBadRequest("invalid submission: "+err.Error()))
		}
		return nil, false
	}
	return &sub, true
}

func parsePositiveInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
