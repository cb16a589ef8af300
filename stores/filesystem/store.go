package filesystem

import (
	"bytes"
	"canvas-editor/core"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

const (
	documentsDir = "documents"
	projectsDir  = "projects"
	pageExt      = ".json"
)

type fsStore struct {
	basePath string
}

// NewStore creates a new filesystem-based store.
func NewStore(basePath string) *fsStore {
	for _, dir := range []string{documentsDir, projectsDir} {
		if err := os.MkdirAll(filepath.Join(basePath, dir), 0755); err != nil {
			logrus.WithError(err).Fatal("failed to create base directory")
		}
	}
	return &fsStore{basePath: basePath}
}

// validName rejects ids that would escape their directory.
func validName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: invalid id %q", core.ErrInvalidArgument, name)
	}
	return nil
}

// DocumentStore implementation for anonymous sharing
func (s *fsStore) FindID(ctx context.Context, id string) (*core.SharedDocument, error) {
	log := logrus.WithField("document_id", id)
	if err := validName(id); err != nil {
		log.WithError(err).Warn("Rejected document id")
		return nil, fmt.Errorf("document with id %s: %w", id, core.ErrNotFound)
	}
	filePath := filepath.Join(s.basePath, documentsDir, id)

	log.WithField("file_path", filePath).Debug("Retrieving document by ID")
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.WithField("error", "document not found").Warn("Document with specified ID not found")
			return nil, fmt.Errorf("document with id %s: %w", id, core.ErrNotFound)
		}
		log.WithError(err).Error("Failed to retrieve document")
		return nil, err
	}

	log.Info("Document retrieved successfully")
	return &core.SharedDocument{Data: *bytes.NewBuffer(data)}, nil
}

func (s *fsStore) Create(ctx context.Context, document *core.SharedDocument) (string, error) {
	id := ulid.Make().String()
	filePath := filepath.Join(s.basePath, documentsDir, id)
	log := logrus.WithFields(logrus.Fields{
		"document_id": id,
		"file_path":   filePath,
	})

	if err := os.WriteFile(filePath, document.Data.Bytes(), 0644); err != nil {
		log.WithError(err).Error("Failed to create document")
		return "", err
	}

	log.Info("Document created successfully")
	return id, nil
}

// PageStore implementation
func (s *fsStore) projectPath(projectID string) (string, error) {
	if err := validName(projectID); err != nil {
		return "", err
	}
	return filepath.Join(s.basePath, projectsDir, projectID), nil
}

func (s *fsStore) pagePath(projectID, id string) (string, error) {
	dir, err := s.projectPath(projectID)
	if err != nil {
		return "", err
	}
	if err := validName(id); err != nil {
		return "", err
	}
	return filepath.Join(dir, id+pageExt), nil
}

func (s *fsStore) List(ctx context.Context, projectID string) ([]*core.Page, error) {
	dir, err := s.projectPath(projectID)
	if err != nil {
		return nil, err
	}
	log := logrus.WithFields(logrus.Fields{"project_id": projectID, "path": dir})

	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug("Project directory does not exist, returning empty list")
			return []*core.Page{}, nil
		}
		log.WithError(err).Error("Failed to read project directory")
		return nil, err
	}

	pages := make([]*core.Page, 0, len(files))
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != pageExt {
			continue
		}
		page, err := readPage(filepath.Join(dir, file.Name()))
		if err != nil {
			log.WithError(err).Warnf("Failed to read page file %s, skipping", file.Name())
			continue
		}
		pages = append(pages, page)
	}
	core.SortPages(pages)

	log.Debugf("Listed %d pages", len(pages))
	return pages, nil
}

func readPage(path string) (*core.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var page core.Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *fsStore) Get(ctx context.Context, projectID, id string) (*core.Page, error) {
	filePath, err := s.pagePath(projectID, id)
	if err != nil {
		return nil, err
	}
	log := logrus.WithFields(logrus.Fields{"project_id": projectID, "page_id": id, "path": filePath})

	page, err := readPage(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("Page file not found")
			return nil, fmt.Errorf("page %s: %w", id, core.ErrNotFound)
		}
		log.WithError(err).Error("Failed to read page file")
		return nil, err
	}
	if page.ProjectID != projectID {
		return nil, fmt.Errorf("page %s: %w", id, core.ErrNotFound)
	}

	log.Debug("Page retrieved successfully")
	return page, nil
}

func (s *fsStore) Save(ctx context.Context, page *core.Page) error {
	filePath, err := s.pagePath(page.ProjectID, page.ID)
	if err != nil {
		return err
	}
	log := logrus.WithFields(logrus.Fields{"project_id": page.ProjectID, "page_id": page.ID, "path": filePath})

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		log.WithError(err).Error("Failed to create project directory")
		return err
	}

	if page.CreatedAt.IsZero() {
		if existing, err := readPage(filePath); err == nil {
			page.CreatedAt = existing.CreatedAt
		} else {
			page.CreatedAt = time.Now()
		}
	}
	page.UpdatedAt = time.Now()

	data, err := json.Marshal(page)
	if err != nil {
		log.WithError(err).Error("Failed to marshal page for saving")
		return err
	}

	// Replaced atomically.
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		log.WithError(err).Error("Failed to write page file")
		return err
	}
	if err := os.Rename(tmp, filePath); err != nil {
		log.WithError(err).Error("Failed to replace page file")
		return errors.Join(err, os.Remove(tmp))
	}

	log.Info("Page saved successfully")
	return nil
}

func (s *fsStore) Delete(ctx context.Context, projectID, id string) error {
	filePath, err := s.pagePath(projectID, id)
	if err != nil {
		return err
	}
	log := logrus.WithFields(logrus.Fields{"project_id": projectID, "page_id": id, "path": filePath})

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			log.Warn("Page file not found for deletion")
			return fmt.Errorf("page %s: %w", id, core.ErrNotFound)
		}
		log.WithError(err).Error("Failed to delete page file")
		return err
	}

	log.Info("Page deleted successfully")
	return nil
}
