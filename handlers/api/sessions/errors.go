package sessions

import (
	"canvas-editor/core"
	"canvas-editor/editor"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound), errors.Is(err, editor.ErrLoopClosed):
		return http.StatusNotFound
	case errors.Is(err, core.ErrLastPage), errors.Is(err, core.ErrPageLocked):
		return http.StatusConflict
	case errors.Is(err, core.ErrInvalidArgument),
		errors.Is(err, core.ErrInvalidGradient),
		errors.Is(err, core.ErrInvalidDocument),
		errors.Is(err, core.ErrUnsupported):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	entry := logrus.WithFields(logrus.Fields{"error": err, "path": r.URL.Path, "status": code})
	if code >= http.StatusInternalServerError {
		entry.Error("Session request failed")
	} else {
		entry.Warn("Session request rejected")
	}
	render.Status(r, code)
	render.JSON(w, r, map[string]string{"error": err.Error()})
}

// decode reads a JSON body into v. Decoding failures are invalid arguments.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", core.ErrInvalidArgument, err)
	}
	return nil
}

func value[T any](raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("%w: invalid value: %v", core.ErrInvalidArgument, err)
	}
	return v, nil
}
