package core

import (
	"bytes"
	"context"
	"sort"
	"time"
)

type (
	// SharedDocument is an exported scene handed out by id for anonymous sharing.
	SharedDocument struct {
		Data bytes.Buffer
	}

	DocumentStore interface {
		FindID(ctx context.Context, id string) (*SharedDocument, error)
		Create(ctx context.Context, document *SharedDocument) (string, error)
	}

	// Page is one independently serialized document of a multi-page project.
	Page struct {
		ID         string    `json:"id"`
		ProjectID  string    `json:"projectId"`
		Name       string    `json:"name"`
		Locked     bool      `json:"locked"`
		Data       string    `json:"data,omitempty"` // Serialized scene, empty until first save.
		Width      float64   `json:"width"`
		Height     float64   `json:"height"`
		Background string    `json:"background"`
		Thumbnail  string    `json:"thumbnail,omitempty"`
		Position   int       `json:"position"`
		CreatedAt  time.Time `json:"createdAt"`
		UpdatedAt  time.Time `json:"updatedAt"`
	}

	// PageStore persists the pages of a project.
	// All operations are scoped to a specific project.
	PageStore interface {
		// List returns every page of a project ordered by Position, including Data.
		List(ctx context.Context, projectID string) ([]*Page, error)

		// Get returns a single page by its ID, ensuring it belongs to the project.
		Get(ctx context.Context, projectID, id string) (*Page, error)

		// Save creates or updates a page.
		Save(ctx context.Context, page *Page) error

		// Delete removes a page, ensuring it belongs to the project.
		Delete(ctx context.Context, projectID, id string) error
	}
)

// Clone returns a copy of p.
func (p *Page) Clone() *Page {
	c := *p
	return &c
}

// SortPages orders pages by Position, breaking ties by ID.
func SortPages(pages []*Page) {
	sort.SliceStable(pages, func(i, j int) bool {
		if pages[i].Position == pages[j].Position {
			return pages[i].ID < pages[j].ID
		}
		return pages[i].Position < pages[j].Position
	})
}
