package sqlite

import (
	"bytes"
	"canvas-editor/core"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	db *sql.DB
}

// NewStore creates a new SQLite-based store.
func NewStore(dataSourceName string) *sqliteStore {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open sqlite database")
	}

	// Initialize table for anonymous documents
	docTableStmt := `CREATE TABLE IF NOT EXISTS documents (id TEXT PRIMARY KEY, data BLOB);`
	if _, err = db.Exec(docTableStmt); err != nil {
		logrus.WithError(err).Fatal("failed to create documents table")
	}

	// Initialize table for project pages
	pageTableStmt := `
	CREATE TABLE IF NOT EXISTS pages (
		id TEXT NOT NULL,
		project_id TEXT NOT NULL,
		name TEXT NOT NULL,
		locked INTEGER NOT NULL DEFAULT 0,
		data TEXT,
		width REAL NOT NULL,
		height REAL NOT NULL,
		background TEXT,
		thumbnail TEXT,
		position INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (project_id, id)
	);`
	if _, err = db.Exec(pageTableStmt); err != nil {
		logrus.WithError(err).Fatal("failed to create pages table")
	}

	return &sqliteStore{db}
}

// Close releases the database handle.
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// DocumentStore implementation
func (s *sqliteStore) FindID(ctx context.Context, id string) (*core.SharedDocument, error) {
	log := logrus.WithField("document_id", id)
	log.Debug("Retrieving document by ID")
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM documents WHERE id = ?", id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.WithField("error", "document not found").Warn("Document with specified ID not found")
			return nil, fmt.Errorf("document with id %s: %w", id, core.ErrNotFound)
		}
		log.WithError(err).Error("Failed to retrieve document")
		return nil, err
	}
	log.Info("Document retrieved successfully")
	return &core.SharedDocument{Data: *bytes.NewBuffer(data)}, nil
}

func (s *sqliteStore) Create(ctx context.Context, document *core.SharedDocument) (string, error) {
	id := ulid.Make().String()
	data := document.Data.Bytes()
	if data == nil {
		data = []byte{}
	}
	log := logrus.WithFields(logrus.Fields{
		"document_id": id,
		"data_length": len(data),
	})

	_, err := s.db.ExecContext(ctx, "INSERT INTO documents (id, data) VALUES (?, ?)", id, data)
	if err != nil {
		log.WithError(err).Error("Failed to create document")
		return "", err
	}
	log.Info("Document created successfully")
	return id, nil
}

const pageColumns = "id, project_id, name, locked, data, width, height, background, thumbnail, position, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPage(row rowScanner) (*core.Page, error) {
	var (
		page             core.Page
		data, bg, thumb  sql.NullString
		created, updated int64
	)
	err := row.Scan(&page.ID, &page.ProjectID, &page.Name, &page.Locked, &data, &page.Width, &page.Height,
		&bg, &thumb, &page.Position, &created, &updated)
	if err != nil {
		return nil, err
	}
	page.Data = data.String
	page.Background = bg.String
	page.Thumbnail = thumb.String
	page.CreatedAt = time.UnixMilli(created)
	page.UpdatedAt = time.UnixMilli(updated)
	return &page, nil
}

// PageStore implementation
func (s *sqliteStore) List(ctx context.Context, projectID string) ([]*core.Page, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+pageColumns+" FROM pages WHERE project_id = ? ORDER BY position, id", projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pages := []*core.Page{}
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, rows.Err()
}

func (s *sqliteStore) Get(ctx context.Context, projectID, id string) (*core.Page, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+pageColumns+" FROM pages WHERE project_id = ? AND id = ?", projectID, id)
	page, err := scanPage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logrus.WithFields(logrus.Fields{"project_id": projectID, "page_id": id}).Warn("Page not found")
			return nil, fmt.Errorf("page %s: %w", id, core.ErrNotFound)
		}
		return nil, err
	}
	return page, nil
}

func (s *sqliteStore) Save(ctx context.Context, page *core.Page) error {
	if page.ProjectID == "" || page.ID == "" {
		return fmt.Errorf("%w: page needs a project and an id", core.ErrInvalidArgument)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // Rollback on any error

	var created int64
	err = tx.QueryRowContext(ctx, "SELECT created_at FROM pages WHERE project_id = ? AND id = ?", page.ProjectID, page.ID).Scan(&created)
	exists := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	now := time.Now()
	if page.CreatedAt.IsZero() {
		if exists {
			page.CreatedAt = time.UnixMilli(created)
		} else {
			page.CreatedAt = now
		}
	}
	page.UpdatedAt = now

	if exists {
		_, err = tx.ExecContext(ctx,
			"UPDATE pages SET name = ?, locked = ?, data = ?, width = ?, height = ?, background = ?, thumbnail = ?, position = ?, updated_at = ? WHERE project_id = ? AND id = ?",
			page.Name, page.Locked, page.Data, page.Width, page.Height, page.Background, page.Thumbnail, page.Position,
			page.UpdatedAt.UnixMilli(), page.ProjectID, page.ID)
	} else {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO pages ("+pageColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			page.ID, page.ProjectID, page.Name, page.Locked, page.Data, page.Width, page.Height, page.Background,
			page.Thumbnail, page.Position, page.CreatedAt.UnixMilli(), page.UpdatedAt.UnixMilli())
	}
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"project_id":  page.ProjectID,
		"page_id":     page.ID,
		"data_length": len(page.Data),
	}).Info("Page saved successfully")
	return nil
}

func (s *sqliteStore) Delete(ctx context.Context, projectID, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM pages WHERE project_id = ? AND id = ?", projectID, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("page %s: %w", id, core.ErrNotFound)
	}
	logrus.WithFields(logrus.Fields{"project_id": projectID, "page_id": id}).Info("Page deleted successfully")
	return nil
}
