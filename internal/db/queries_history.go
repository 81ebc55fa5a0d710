package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/kvasir-media/clipstream/internal/model"
)

// UploadRecord is one locally remembered completed upload.
type UploadRecord struct {
	ID         string
	VideoID    string
	Title      string
	VideoType  model.VideoType
	SizeBytes  int64
	UploadedAt time.Time
}

// AppendUpload records a completed upload in the local history.
func AppendUpload(database *sql.DB, videoID, title string, videoType model.VideoType, sizeBytes int64) error {
	_, err := database.Exec(
		`INSERT INTO upload_history (id, video_id, title, video_type, size_bytes, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), videoID, title, string(videoType), sizeBytes,
		// millisecond precision so history ordering survives rapid uploads
		time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
	)
	return err
}

// ListUploads returns the upload history, most recent first.
func ListUploads(database *sql.DB, limit int) ([]UploadRecord, error) {
	rows, err := database.Query(
		`SELECT id, video_id, title, video_type, size_bytes, uploaded_at
		 FROM upload_history ORDER BY uploaded_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []UploadRecord
	for rows.Next() {
		var rec UploadRecord
		var vt string
		var uploadedAt SQLiteTime
		if err := rows.Scan(&rec.ID, &rec.VideoID, &rec.Title, &vt, &rec.SizeBytes, &uploadedAt); err != nil {
			return nil, err
		}
		rec.VideoType = model.VideoType(vt)
		rec.UploadedAt = uploadedAt.Time
		records = append(records, rec)
	}
	return records, rows.Err()
}
