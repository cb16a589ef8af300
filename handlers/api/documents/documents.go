package documents

import (
	"bytes"
	"canvas-editor/core"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type DocumentCreateResponse struct {
	ID string `json:"id"`
}

// HandleCreate stores the raw request body as a shared document.
func HandleCreate(documentStore core.DocumentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := new(bytes.Buffer)
		if _, err := io.Copy(data, r.Body); err != nil {
			logrus.WithField("error", err).Error("Failed to read request body")
			http.Error(w, "Failed to copy", http.StatusInternalServerError)
			return
		}

		id, err := documentStore.Create(r.Context(), &core.SharedDocument{Data: *data})
		if err != nil {
			logrus.WithField("error", err).Error("Failed to save document")
			http.Error(w, "Failed to save", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, DocumentCreateResponse{ID: id})
	}
}

// HandleGet writes the stored document bytes back unchanged.
func HandleGet(documentStore core.DocumentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "document not found", http.StatusNotFound)
			return
		}

		document, err := documentStore.FindID(r.Context(), id)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				http.Error(w, "document not found", http.StatusNotFound)
				return
			}
			logrus.WithFields(logrus.Fields{"document_id": id, "error": err}).Error("Failed to load document")
			http.Error(w, "Failed to load", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(document.Data.Bytes())
	}
}
