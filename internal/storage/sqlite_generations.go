package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/good-yellow-bee/grantdoc/internal/metrics"
	"github.com/good-yellow-bee/grantdoc/internal/models"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type sqliteGenerationRepo struct {
	db *sql.DB
}

func observe(operation string, start time.Time, err error) {
	metrics.StorageQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StorageErrors.WithLabelValues(operation).Inc()
	}
}

func (r *sqliteGenerationRepo) Create(ctx context.Context, rec *models.GenerationRecord) (err error) {
	start := time.Now()
	defer func() { observe("create_generation", start, err) }()

	query := `
		INSERT INTO generations (id, submission_id, unique_id, source, format, status,
			file_name, bytes, duration_ms, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		rec.ID, rec.SubmissionID, rec.UniqueID, string(rec.Source), rec.Format, string(rec.Status),
		nullString(rec.FileName), rec.Bytes, rec.DurationMS, nullString(rec.Error), rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("create generation: %w", err)
	}
	return nil
}

func (r *sqliteGenerationRepo) GetByID(ctx context.Context, id string) (*models.GenerationRecord, error) {
	query := `
		SELECT id, submission_id, unique_id, source, format, status, file_name,
			bytes, duration_ms, error, created_at
		FROM generations WHERE id = ?
	`
	rec, err := scanGeneration(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get generation: %w", err)
	}
	return rec, nil
}

func (r *sqliteGenerationRepo) List(ctx context.Context, filter GenerationFilter) ([]*models.GenerationRecord, int64, error) {
	start := time.Now()

	var where []string
	var args []any
	if filter.UniqueID != "" {
		where = append(where, "unique_id = ?")
		args = append(args, filter.UniqueID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM generations"+clause, args...).Scan(&total); err != nil {
		observe("list_generations", start, err)
		return nil, 0, fmt.Errorf("count generations: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, submission_id, unique_id, source, format, status, file_name,
			bytes, duration_ms, error, created_at
		FROM generations` + clause + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		observe("list_generations", start, err)
		return nil, 0, fmt.Errorf("query generations: %w", err)
	}
	defer rows.Close()

	var records []*models.GenerationRecord
	for rows.Next() {
		rec, err := scanGeneration(rows)
		if err != nil {
			observe("list_generations", start, err)
			return nil, 0, fmt.Errorf("scan generation: %w", err)
		}
		records = append(records, rec)
	}
	err = rows.Err()
	observe("list_generations", start, err)
	return records, total, err
}

func (r *sqliteGenerationRepo) Stats(ctx context.Context) (*GenerationStats, error) {
	query := `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
		FROM generations
	`
	var stats GenerationStats
	err := r.db.QueryRowContext(ctx, query, string(models.GenerationSuccess), string(models.GenerationFailed)).
		Scan(&stats.Total, &stats.Succeeded, &stats.Failed)
	if err != nil {
		return nil, fmt.Errorf("generation stats: %w", err)
	}
	return &stats, nil
}

func (r *sqliteGenerationRepo) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM generations WHERE created_at < ?", t.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete generations: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete generations: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGeneration(row scanner) (*models.GenerationRecord, error) {
	var rec models.GenerationRecord
	var source, status string
	var fileName, errText sql.NullString
	err := row.Scan(
		&rec.ID, &rec.SubmissionID, &rec.UniqueID, &source, &rec.Format, &status,
		&fileName, &rec.Bytes, &rec.DurationMS, &errText, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Source = models.GenerationSource(source)
	rec.Status = models.GenerationStatus(status)
	rec.FileName = fileName.String
	rec.Error = errText.String
	return &rec, nil
}
