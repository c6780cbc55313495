package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// UploadedFile is the metadata row for one upload. AnalyticsJSON holds the
// serialized analytics summary exactly as computed at upload time.
type UploadedFile struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	OriginalFilename string    `json:"original_filename"`
	StoredFilename   string    `json:"stored_filename"`
	FileSize         int64     `json:"file_size"`
	UploadDate       time.Time `json:"upload_date"`
	AnalyticsJSON    string    `json:"analytics_json"`
}

// CreateFile inserts an uploaded-file record and returns it with its ID.
func (s *Store) CreateFile(ctx context.Context, f *UploadedFile) (*UploadedFile, error) {
	query := `
		INSERT INTO uploaded_files (user_id, original_filename, stored_filename, file_size, analytics_json)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, upload_date`

	err := s.pool.QueryRow(ctx, query,
		f.UserID, f.OriginalFilename, f.StoredFilename, f.FileSize, f.AnalyticsJSON,
	).Scan(&f.ID, &f.UploadDate)
	if err != nil {
		return nil, fmt.Errorf("create file record: %w", err)
	}
	return f, nil
}

// GetFile returns one file record, scoped to its owner.
func (s *Store) GetFile(ctx context.Context, id, userID int64) (*UploadedFile, error) {
	query := `
		SELECT id, user_id, original_filename, stored_filename, file_size, upload_date, COALESCE(analytics_json, '')
		FROM uploaded_files
		WHERE id = $1 AND user_id = $2`

	var f UploadedFile
	err := s.pool.QueryRow(ctx, query, id, userID).Scan(
		&f.ID, &f.UserID, &f.OriginalFilename, &f.StoredFilename, &f.FileSize, &f.UploadDate, &f.AnalyticsJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get file: %w", err)
	}
	return &f, nil
}

// ListFiles returns a user's uploads, newest first.
func (s *Store) ListFiles(ctx context.Context, userID int64) ([]*UploadedFile, error) {
	query := `
		SELECT id, user_id, original_filename, stored_filename, file_size, upload_date, COALESCE(analytics_json, '')
		FROM uploaded_files
		WHERE user_id = $1
		ORDER BY upload_date DESC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []*UploadedFile
	for rows.Next() {
		var f UploadedFile
		if err := rows.Scan(&f.ID, &f.UserID, &f.OriginalFilename, &f.StoredFilename, &f.FileSize, &f.UploadDate, &f.AnalyticsJSON); err != nil {
			return nil, fmt.Errorf("scan file row: %w", err)
		}
		files = append(files, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate file rows: %w", err)
	}
	return files, nil
}
