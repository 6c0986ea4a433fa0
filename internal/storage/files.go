package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/petervdpas/codeseed/internal/errs"
)

// created_at is stored as fixed-width UTC text so that string order equals
// time order.
const timeLayout = "2006-01-02 15:04:05.000000000"

// Record is one row of website_files: the content of one file of one
// project at the time it was written.
type Record struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	ProjectID string    `json:"project_id"`
}

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	for _, layout := range []string{timeLayout, "2006-01-02 15:04:05", time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Insert stores r. An empty ID gets a fresh uuid and a zero CreatedAt gets
// the current time.
func (d *DB) Insert(r Record) (Record, error) {
	if r.ProjectID == "" {
		return Record{}, errs.Invalid("project_id", "required")
	}
	if r.Filename == "" {
		return Record{}, errs.Invalid("filename", "required")
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.CreatedAt = r.CreatedAt.UTC()

	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.db.Exec(`
		INSERT INTO website_files (id, filename, content, created_at, project_id)
		VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.Filename, r.Content, formatTime(r.CreatedAt), r.ProjectID,
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert %s/%s: %w", r.ProjectID, r.Filename, err)
	}
	return r, nil
}

// InsertAll stores records in one transaction; either all land or none.
func (d *DB) InsertAll(records []Record) ([]Record, error) {
	now := time.Now().UTC()
	out := make([]Record, 0, len(records))

	d.mu.Lock()
	defer d.mu.Unlock()
	tx, err := d.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	for _, r := range records {
		if r.ProjectID == "" || r.Filename == "" {
			return nil, errs.Invalid("record", "project_id and filename are required")
		}
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		r.CreatedAt = r.CreatedAt.UTC()
		if _, err := tx.Exec(`
			INSERT INTO website_files (id, filename, content, created_at, project_id)
			VALUES (?, ?, ?, ?, ?)`,
			r.ID, r.Filename, r.Content, formatTime(r.CreatedAt), r.ProjectID,
		); err != nil {
			return nil, fmt.Errorf("insert %s/%s: %w", r.ProjectID, r.Filename, err)
		}
		out = append(out, r)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// ProjectFiles returns every record of a project, newest first. Records with
// the same created_at come back in reverse insertion order.
func (d *DB) ProjectFiles(projectID string) ([]Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	rows, err := d.db.Query(`
		SELECT id, filename, content, created_at, project_id
		FROM website_files WHERE project_id = ?
		ORDER BY created_at DESC, rowid DESC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows, true)
}

// Heads returns every record without its content, newest first. It backs the
// project gallery, which only needs ids and timestamps.
func (d *DB) Heads() ([]Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	rows, err := d.db.Query(`
		SELECT id, filename, created_at, project_id
		FROM website_files
		ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows, false)
}

func scanRecords(rows *sql.Rows, withContent bool) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var r Record
		var created string
		var err error
		if withContent {
			err = rows.Scan(&r.ID, &r.Filename, &r.Content, &created, &r.ProjectID)
		} else {
			err = rows.Scan(&r.ID, &r.Filename, &created, &r.ProjectID)
		}
		if err != nil {
			return nil, err
		}
		r.CreatedAt = parseTime(created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveContent writes content to the newest record of (projectID, filename),
// or inserts a new record when the project has no such file. Concurrent
// writers are not reconciled: the last write wins.
func (d *DB) SaveContent(projectID, filename, content string) (Record, error) {
	if projectID == "" || filename == "" {
		return Record{}, errs.Invalid("file", "project and filename are required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var r Record
	var created string
	err := d.db.QueryRow(`
		SELECT id, filename, created_at, project_id FROM website_files
		WHERE project_id = ? AND filename = ?
		ORDER BY created_at DESC, rowid DESC LIMIT 1`, projectID, filename).
		Scan(&r.ID, &r.Filename, &created, &r.ProjectID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		r = Record{
			ID:        uuid.NewString(),
			Filename:  filename,
			Content:   content,
			CreatedAt: time.Now().UTC(),
			ProjectID: projectID,
		}
		_, err = d.db.Exec(`
			INSERT INTO website_files (id, filename, content, created_at, project_id)
			VALUES (?, ?, ?, ?, ?)`,
			r.ID, r.Filename, r.Content, formatTime(r.CreatedAt), r.ProjectID)
		if err != nil {
			return Record{}, fmt.Errorf("insert %s/%s: %w", projectID, filename, err)
		}
		return r, nil
	case err != nil:
		return Record{}, err
	}

	if _, err := d.db.Exec(`UPDATE website_files SET content = ? WHERE id = ?`, content, r.ID); err != nil {
		return Record{}, fmt.Errorf("update %s/%s: %w", projectID, filename, err)
	}
	r.Content = content
	r.CreatedAt = parseTime(created)
	return r, nil
}

// DeleteFile removes every record of filename in a project and returns how
// many were removed.
func (d *DB) DeleteFile(projectID, filename string) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	res, err := d.db.Exec(`DELETE FROM website_files WHERE project_id = ? AND filename = ?`, projectID, filename)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteProject removes every record of a project.
func (d *DB) DeleteProject(projectID string) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	res, err := d.db.Exec(`DELETE FROM website_files WHERE project_id = ?`, projectID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
