package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clipline/internal/job"
)

const jobColumns = "id, asset_id, source_path, original_name, request_json, state, stage, percent, output_path, error_message, created_at, updated_at"

// InsertJob records a freshly built job.
func (s *Store) InsertJob(ctx context.Context, j *job.Job) error {
	if j == nil {
		return errors.New("job is nil")
	}
	requestJSON, err := json.Marshal(j.Request)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (
            id, asset_id, source_path, original_name, request_json,
            state, stage, percent, output_path, error_message, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID,
		j.Request.AssetID,
		j.Request.SourcePath,
		nullableString(j.Request.OriginalName),
		string(requestJSON),
		string(j.Status.State),
		nullableString(string(j.Status.Stage)),
		j.Status.Percent,
		nullableString(j.Status.OutputPath),
		nullableString(j.Status.Reason),
		formatTimestamp(j.CreatedAt),
		formatTimestamp(j.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// UpdateJobStatus mirrors a published status onto the job row.
func (s *Store) UpdateJobStatus(ctx context.Context, jobID string, status job.Status) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs
         SET state = ?, stage = ?, percent = ?, output_path = ?, error_message = ?, updated_at = ?
         WHERE id = ?`,
		string(status.State),
		nullableString(string(status.Stage)),
		status.Percent,
		nullableString(status.OutputPath),
		nullableString(status.Reason),
		formatTimestamp(time.Now()),
		jobID,
	)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	return nil
}

// GetJob fetches a job row by identifier. A missing row returns nil, nil.
func (s *Store) GetJob(ctx context.Context, id string) (*JobRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	record, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return record, nil
}

// ListJobs returns jobs newest first, capped at limit when positive.
func (s *Store) ListJobs(ctx context.Context, limit int) ([]*JobRecord, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var records []*JobRecord
	for rows.Next() {
		record, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// ResetInterrupted marks every non-terminal job as failed. Called at daemon
// start: execution is in-process only, so anything still queued or running
// after a restart can never finish.
func (s *Store) ResetInterrupted(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs SET state = ?, error_message = ?, updated_at = ? WHERE state IN (?, ?)`,
		string(job.StateFailed),
		"interrupted by restart",
		formatTimestamp(time.Now()),
		string(job.StateQueued),
		string(job.StateRunning),
	)
	if err != nil {
		return 0, fmt.Errorf("reset interrupted jobs: %w", err)
	}
	return res.RowsAffected()
}

func scanJob(scanner interface{ Scan(dest ...any) error }) (*JobRecord, error) {
	var (
		id           string
		assetID      string
		sourcePath   string
		originalName sql.NullString
		requestJSON  string
		stateStr     string
		stage        sql.NullString
		percent      sql.NullFloat64
		outputPath   sql.NullString
		errorMessage sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&assetID,
		&sourcePath,
		&originalName,
		&requestJSON,
		&stateStr,
		&stage,
		&percent,
		&outputPath,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	var request job.Request
	if err := json.Unmarshal([]byte(requestJSON), &request); err != nil {
		return nil, fmt.Errorf("unmarshal request: %w", err)
	}
	state, ok := job.ParseState(stateStr)
	if !ok {
		return nil, fmt.Errorf("unknown job state %q", stateStr)
	}

	return &JobRecord{
		ID:           id,
		AssetID:      assetID,
		SourcePath:   sourcePath,
		OriginalName: originalName.String,
		Request:      request,
		Status: job.Status{
			State:      state,
			Stage:      job.Stage(stage.String),
			Percent:    percent.Float64,
			OutputPath: outputPath.String,
			Reason:     errorMessage.String,
		},
		CreatedAt: parseTimestamp(createdRaw),
		UpdatedAt: parseTimestamp(updatedRaw),
	}, nil
}
