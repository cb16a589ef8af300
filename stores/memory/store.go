package memory

import (
	"bytes"
	"canvas-editor/core"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

type memStore struct {
	mu        sync.RWMutex
	documents map[string][]byte
	pages     map[string]map[string]*core.Page
}

// NewStore creates a new in-memory store.
func NewStore() *memStore {
	return &memStore{
		documents: make(map[string][]byte),
		pages:     make(map[string]map[string]*core.Page),
	}
}

// DocumentStore implementation for anonymous sharing
func (s *memStore) FindID(ctx context.Context, id string) (*core.SharedDocument, error) {
	log := logrus.WithField("document_id", id)

	s.mu.RLock()
	data, ok := s.documents[id]
	s.mu.RUnlock()

	if !ok {
		log.WithField("error", "document not found").Warn("Document with specified ID not found")
		return nil, fmt.Errorf("document with id %s: %w", id, core.ErrNotFound)
	}

	log.Info("Document retrieved successfully")
	return &core.SharedDocument{Data: *bytes.NewBuffer(bytes.Clone(data))}, nil
}

func (s *memStore) Create(ctx context.Context, document *core.SharedDocument) (string, error) {
	id := ulid.Make().String()
	data := bytes.Clone(document.Data.Bytes())

	s.mu.Lock()
	s.documents[id] = data
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"document_id": id,
		"data_length": len(data),
	}).Info("Document created successfully")

	return id, nil
}

// PageStore implementation
func (s *memStore) List(ctx context.Context, projectID string) ([]*core.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project := s.pages[projectID]
	pages := make([]*core.Page, 0, len(project))
	for _, p := range project {
		pages = append(pages, p.Clone())
	}
	core.SortPages(pages)

	logrus.WithField("project_id", projectID).Debugf("Listed %d pages", len(pages))
	return pages, nil
}

func (s *memStore) Get(ctx context.Context, projectID, id string) (*core.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pages[projectID][id]
	if !ok {
		logrus.WithFields(logrus.Fields{"project_id": projectID, "page_id": id}).Warn("Page not found")
		return nil, fmt.Errorf("page %s: %w", id, core.ErrNotFound)
	}
	return p.Clone(), nil
}

func (s *memStore) Save(ctx context.Context, page *core.Page) error {
	if page.ProjectID == "" || page.ID == "" {
		return fmt.Errorf("%w: page needs a project and an id", core.ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	project, ok := s.pages[page.ProjectID]
	if !ok {
		project = make(map[string]*core.Page)
		s.pages[page.ProjectID] = project
	}

	now := time.Now()
	if existing, ok := project[page.ID]; ok && page.CreatedAt.IsZero() {
		page.CreatedAt = existing.CreatedAt
	}
	if page.CreatedAt.IsZero() {
		page.CreatedAt = now
	}
	page.UpdatedAt = now
	project[page.ID] = page.Clone()

	logrus.WithFields(logrus.Fields{
		"project_id":  page.ProjectID,
		"page_id":     page.ID,
		"data_length": len(page.Data),
	}).Info("Page saved successfully")
	return nil
}

func (s *memStore) Delete(ctx context.Context, projectID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logrus.WithFields(logrus.Fields{"project_id": projectID, "page_id": id})
	if _, ok := s.pages[projectID][id]; !ok {
		log.Warn("Page not found for deletion")
		return fmt.Errorf("page %s: %w", id, core.ErrNotFound)
	}
	delete(s.pages[projectID], id)
	if len(s.pages[projectID]) == 0 {
		delete(s.pages, projectID)
	}

	log.Info("Page deleted successfully")
	return nil
}
