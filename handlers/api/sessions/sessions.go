package sessions

import (
	"canvas-editor/core"
	"canvas-editor/editor"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type (
	CreateSessionRequest struct {
		ProjectID string  `json:"projectId"`
		Width     float64 `json:"width"`
		Height    float64 `json:"height"`
	}

	AddObjectRequest struct {
		Type  string            `json:"type"`
		Text  string            `json:"text"`
		Src   string            `json:"src"`
		Path  string            `json:"path"`
		Chart *editor.ChartSpec `json:"chart"`
	}

	ObjectResponse struct {
		ID   string    `json:"id"`
		Kind core.Kind `json:"kind"`
	}

	StyleRequest struct {
		Property string          `json:"property"`
		Value    json.RawMessage `json:"value"`
	}

	StyleState struct {
		Fill         string                  `json:"fill"`
		Stroke       string                  `json:"stroke"`
		StrokeWidth  float64                 `json:"strokeWidth"`
		StrokeDash   []float64               `json:"strokeDashArray"`
		Opacity      float64                 `json:"opacity"`
		FontFamily   string                  `json:"fontFamily"`
		FontSize     float64                 `json:"fontSize"`
		FontWeight   string                  `json:"fontWeight"`
		FontStyle    string                  `json:"fontStyle"`
		Underline    bool                    `json:"underline"`
		Linethrough  bool                    `json:"linethrough"`
		TextAlign    string                  `json:"textAlign"`
		CornerRadius float64                 `json:"cornerRadius"`
		Shadow       *core.Shadow            `json:"shadow"`
		Gradient     core.GradientDescriptor `json:"gradient"`
	}

	HistoryResponse struct {
		editor.HistoryState
		Steps int `json:"steps"`
	}

	MoveRequest struct {
		From int `json:"from"`
		To   int `json:"to"`
	}

	OpacityRequest struct {
		Opacity float64 `json:"opacity"`
	}

	PageRequest struct {
		Name string `json:"name"`
	}

	DrawingRequest struct {
		Enabled  *bool                `json:"enabled"`
		Settings *editor.DrawSettings `json:"settings"`
	}

	DrawingState struct {
		Enabled  bool                `json:"enabled"`
		Settings editor.DrawSettings `json:"settings"`
	}
)

// Routes mounts the session API on r.
func Routes(reg *Registry) func(r chi.Router) {
	return func(r chi.Router) {
		r.Get("/", HandleList(reg))
		r.Post("/", HandleCreate(reg))
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", HandleDelete(reg))
			r.Post("/persist", HandlePersist(reg))

			r.Post("/objects", HandleAddObject(reg))
			r.Delete("/selection", HandleDeleteSelection(reg))
			r.Post("/selection/{action}", HandleSelectionAction(reg))

			r.Get("/style", HandleGetStyle(reg))
			r.Put("/style", HandleSetStyle(reg))

			r.Get("/history", HandleHistory(reg))
			r.Post("/undo", HandleUndo(reg))
			r.Post("/redo", HandleRedo(reg))

			r.Put("/workspace", HandleWorkspace(reg))
			r.Put("/background", HandleBackground(reg))

			r.Get("/layers", HandleLayers(reg))
			r.Post("/layers/reorder", HandleReorderLayers(reg))
			r.Post("/layers/{layerId}/{action}", HandleLayerAction(reg))
			r.Put("/layers/{layerId}/opacity", HandleLayerOpacity(reg))
			r.Delete("/layers/{layerId}", HandleRemoveLayer(reg))

			r.Get("/pages", HandlePages(reg))
			r.Post("/pages", HandleAddPage(reg))
			r.Post("/pages/move", HandleMovePage(reg))
			r.Post("/pages/{pageId}/{action}", HandlePageAction(reg))
			r.Put("/pages/{pageId}", HandleRenamePage(reg))
			r.Delete("/pages/{pageId}", HandleDeletePage(reg))

			r.Get("/drawing", HandleGetDrawing(reg))
			r.Put("/drawing", HandleDrawing(reg))
			r.Post("/drawing/clear", HandleClearDrawing(reg))
			r.Post("/drawing/undo", HandleUndoStroke(reg))

			r.Get("/export", HandleExport(reg))
			r.Put("/document", HandleLoadDocument(reg))
		})
	}
}

// withSession resolves the {id} URL parameter before calling fn.
func withSession(reg *Registry, fn func(w http.ResponseWriter, r *http.Request, s *Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := reg.Get(chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, r, err)
			return
		}
		fn(w, r, s)
	}
}

// run executes fn on the session loop and renders its result as JSON.
func run[T any](w http.ResponseWriter, r *http.Request, s *Session, fn func(e *editor.Editor) (T, error)) {
	var out T
	err := s.Do(r.Context(), func(e *editor.Editor) error {
		var err error
		out, err = fn(e)
		return err
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, out)
}

func HandleList(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, reg.List())
	}
}

func HandleCreate(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := CreateSessionRequest{Width: editor.DefaultWorkspaceWidth, Height: editor.DefaultWorkspaceHeight}
		if r.ContentLength != 0 {
			if err := decode(r, &req); err != nil {
				respondError(w, r, err)
				return
			}
		}
		s, err := reg.Create(r.Context(), req.ProjectID, editor.Size{Width: req.Width, Height: req.Height})
		if err != nil {
			respondError(w, r, err)
			return
		}
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, s.Info())
	}
}

func HandleDelete(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := reg.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			respondError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func HandlePersist(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		run(w, r, s, func(e *editor.Editor) (editor.PagesState, error) {
			err := e.Pages().Persist(r.Context())
			return pagesState(e), err
		})
	})
}

func HandleAddObject(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		var req AddObjectRequest
		if err := decode(r, &req); err != nil {
			respondError(w, r, err)
			return
		}
		if req.Type == "image" {
			err := s.Do(r.Context(), func(e *editor.Editor) error { return e.AddImage(req.Src) })
			if err != nil {
				respondError(w, r, err)
				return
			}
			render.Status(r, http.StatusAccepted)
			render.JSON(w, r, map[string]string{"status": "loading"})
			return
		}

		var out ObjectResponse
		err := s.Do(r.Context(), func(e *editor.Editor) error {
			o, err := addObject(e, req)
			if err != nil {
				return err
			}
			out = ObjectResponse{ID: o.ID, Kind: o.Kind}
			return nil
		})
		if err != nil {
			respondError(w, r, err)
			return
		}
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, out)
	})
}

func addObject(e *editor.Editor, req AddObjectRequest) (*core.Object, error) {
	switch strings.ToLower(req.Type) {
	case "rect", "rectangle":
		return e.AddRect(), nil
	case "circle":
		return e.AddCircle(), nil
	case "triangle":
		return e.AddTriangle(), nil
	case "line":
		return e.AddLine(), nil
	case "text":
		text := req.Text
		if text == "" {
			text = "Text"
		}
		return e.AddText(text), nil
	case "icon":
		return e.AddIcon(req.Path)
	case "chart":
		if req.Chart == nil {
			return nil, fmt.Errorf("%w: chart spec required", core.ErrInvalidArgument)
		}
		return e.AddChart(*req.Chart)
	default:
		return nil, fmt.Errorf("%w: unknown object type %q", core.ErrInvalidArgument, req.Type)
	}
}

func HandleDeleteSelection(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		run(w, r, s, func(e *editor.Editor) (map[string]int, error) {
			return map[string]int{"deleted": e.Delete()}, nil
		})
	})
}

// HandleSelectionAction duplicates or restacks the selection.
func HandleSelectionAction(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		action := chi.URLParam(r, "action")
		run(w, r, s, func(e *editor.Editor) ([]ObjectResponse, error) {
			switch action {
			case "duplicate":
				copies := e.Duplicate()
				out := make([]ObjectResponse, 0, len(copies))
				for _, o := range copies {
					out = append(out, ObjectResponse{ID: o.ID, Kind: o.Kind})
				}
				return out, nil
			case "forward":
				e.BringForward()
			case "backward":
				e.SendBackwards()
			case "front":
				e.BringToFront()
			case "back":
				e.SendToBack()
			default:
				return nil, fmt.Errorf("%w: unknown selection action %q", core.ErrInvalidArgument, action)
			}
			return []ObjectResponse{}, nil
		})
	})
}

func styleState(e *editor.Editor) StyleState {
	return StyleState{
		Fill:         e.ActiveFillColor(),
		Stroke:       e.ActiveStrokeColor(),
		StrokeWidth:  e.ActiveStrokeWidth(),
		StrokeDash:   e.ActiveStrokeDashArray(),
		Opacity:      e.ActiveOpacity(),
		FontFamily:   e.ActiveFontFamily(),
		FontSize:     e.ActiveFontSize(),
		FontWeight:   e.ActiveFontWeight(),
		FontStyle:    e.ActiveFontStyle(),
		Underline:    e.ActiveFontUnderline(),
		Linethrough:  e.ActiveFontLinethrough(),
		TextAlign:    e.ActiveTextAlign(),
		CornerRadius: e.ActiveCornerRadius(),
		Shadow:       e.ActiveShadow(),
		Gradient:     e.ActiveGradient(),
	}
}

func HandleGetStyle(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		run(w, r, s, func(e *editor.Editor) (StyleState, error) {
			return styleState(e), nil
		})
	})
}

func HandleSetStyle(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		var req StyleRequest
		if err := decode(r, &req); err != nil {
			respondError(w, r, err)
			return
		}
		run(w, r, s, func(e *editor.Editor) (StyleState, error) {
			if err := ApplyStyle(e, req.Property, req.Value); err != nil {
				return StyleState{}, err
			}
			return styleState(e), nil
		})
	})
}

// ApplyStyle sets one style property on the selection from its JSON value.
func ApplyStyle(e *editor.Editor, property string, raw json.RawMessage) error {
	str := func(set func(string)) error {
		v, err := value[string](raw)
		if err == nil {
			set(v)
		}
		return err
	}
	num := func(set func(float64)) error {
		v, err := value[float64](raw)
		if err == nil {
			set(v)
		}
		return err
	}
	flag := func(set func(bool)) error {
		v, err := value[bool](raw)
		if err == nil {
			set(v)
		}
		return err
	}

	switch property {
	case "fill":
		return str(e.SetFillColor)
	case "stroke":
		return str(e.SetStrokeColor)
	case "strokeWidth":
		return num(e.SetStrokeWidth)
	case "strokeDashArray":
		dash, err := value[[]float64](raw)
		if err == nil {
			e.SetStrokeDashArray(dash)
		}
		return err
	case "opacity":
		v, err := value[float64](raw)
		if err != nil {
			return err
		}
		return e.SetOpacity(v)
	case "fontFamily":
		return str(e.SetFontFamily)
	case "fontSize":
		return num(e.SetFontSize)
	case "fontWeight":
		return str(e.SetFontWeight)
	case "fontStyle":
		return str(e.SetFontStyle)
	case "underline":
		return flag(e.SetFontUnderline)
	case "linethrough":
		return flag(e.SetFontLinethrough)
	case "textAlign":
		return str(e.SetTextAlign)
	case "cornerRadius":
		return num(e.SetCornerRadius)
	case "shadow":
		shadow, err := value[*core.Shadow](raw)
		if err == nil {
			e.SetShadow(shadow)
		}
		return err
	case "gradient":
		var desc core.GradientDescriptor
		if err := json.Unmarshal(raw, &desc); err != nil {
			return fmt.Errorf("%w: %v", core.ErrInvalidGradient, err)
		}
		defaultStopOpacity(raw, &desc)
		return e.SetGradient(desc)
	default:
		return fmt.Errorf("%w: unknown style property %q", core.ErrInvalidArgument, property)
	}
}

// defaultStopOpacity sets Opacity to 1 on stops that did not carry one.
func defaultStopOpacity(raw json.RawMessage, desc *core.GradientDescriptor) {
	var probe struct {
		Stops []map[string]json.RawMessage `json:"stops"`
	}
	if json.Unmarshal(raw, &probe) != nil {
		return
	}
	for i, stop := range probe.Stops {
		if _, ok := stop["opacity"]; !ok && i < len(desc.Stops) {
			desc.Stops[i].Opacity = 1
		}
	}
}

func historyState(e *editor.Editor) HistoryResponse {
	h := e.History()
	return HistoryResponse{
		HistoryState: editor.HistoryState{CanUndo: h.CanUndo(), CanRedo: h.CanRedo()},
		Steps:        h.Len(),
	}
}

func HandleHistory(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		run(w, r, s, func(e *editor.Editor) (HistoryResponse, error) {
			e.History().Flush()
			return historyState(e), nil
		})
	})
}

func HandleUndo(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		run(w, r, s, func(e *editor.Editor) (HistoryResponse, error) {
			err := e.History().Undo()
			return historyState(e), err
		})
	})
}

func HandleRedo(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		run(w, r, s, func(e *editor.Editor) (HistoryResponse, error) {
			err := e.History().Redo()
			return historyState(e), err
		})
	})
}

func HandleWorkspace(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		var size editor.Size
		if err := decode(r, &size); err != nil {
			respondError(w, r, err)
			return
		}
		run(w, r, s, func(e *editor.Editor) (editor.Size, error) {
			if err := e.ChangeSize(size); err != nil {
				return editor.Size{}, err
			}
			return e.WorkspaceSize(), nil
		})
	})
}

func HandleBackground(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		var bg editor.Background
		if err := decode(r, &bg); err != nil {
			respondError(w, r, err)
			return
		}
		if err := s.Do(r.Context(), func(e *editor.Editor) error { return e.ChangeBackground(bg) }); err != nil {
			respondError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func HandleLayers(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		run(w, r, s, func(e *editor.Editor) ([]editor.Layer, error) {
			return e.Layers().Layers(), nil
		})
	})
}

func HandleReorderLayers(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		var req MoveRequest
		if err := decode(r, &req); err != nil {
			respondError(w, r, err)
			return
		}
		run(w, r, s, func(e *editor.Editor) ([]editor.Layer, error) {
			err := e.Layers().ReorderLayers(req.From, req.To)
			return e.Layers().Layers(), err
		})
	})
}

func HandleLayerAction(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		id, action := chi.URLParam(r, "layerId"), chi.URLParam(r, "action")
		run(w, r, s, func(e *editor.Editor) (editor.Layer, error) {
			layers := e.Layers()
			var err error
			switch action {
			case "visibility":
				err = layers.ToggleVisibility(id)
			case "lock":
				err = layers.ToggleLock(id)
			case "select":
				err = layers.SelectLayer(id)
			case "duplicate":
				return layers.DuplicateLayer(id)
			default:
				err = fmt.Errorf("%w: unknown layer action %q", core.ErrInvalidArgument, action)
			}
			if err != nil {
				return editor.Layer{}, err
			}
			return layers.Layer(id)
		})
	})
}

func HandleLayerOpacity(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		var req OpacityRequest
		if err := decode(r, &req); err != nil {
			respondError(w, r, err)
			return
		}
		id := chi.URLParam(r, "layerId")
		run(w, r, s, func(e *editor.Editor) (editor.Layer, error) {
			if err := e.Layers().UpdateLayerOpacity(id, req.Opacity); err != nil {
				return editor.Layer{}, err
			}
			return e.Layers().Layer(id)
		})
	})
}

func HandleRemoveLayer(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		id := chi.URLParam(r, "layerId")
		if err := s.Do(r.Context(), func(e *editor.Editor) error { return e.Layers().RemoveLayer(id) }); err != nil {
			respondError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func pagesState(e *editor.Editor) editor.PagesState {
	return editor.PagesState{Pages: e.Pages().Pages(), Current: e.Pages().Current()}
}

func HandlePages(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		run(w, r, s, func(e *editor.Editor) (editor.PagesState, error) {
			return pagesState(e), nil
		})
	})
}

func HandleAddPage(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		var req PageRequest
		if r.ContentLength != 0 {
			if err := decode(r, &req); err != nil {
				respondError(w, r, err)
				return
			}
		}
		var page editor.PageInfo
		if err := s.Do(r.Context(), func(e *editor.Editor) error {
			page = e.Pages().AddPage(req.Name)
			return nil
		}); err != nil {
			respondError(w, r, err)
			return
		}
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, page)
	})
}

func HandleMovePage(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		var req MoveRequest
		if err := decode(r, &req); err != nil {
			respondError(w, r, err)
			return
		}
		run(w, r, s, func(e *editor.Editor) (editor.PagesState, error) {
			err := e.Pages().MovePage(req.From, req.To)
			return pagesState(e), err
		})
	})
}

func HandlePageAction(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		id, action := chi.URLParam(r, "pageId"), chi.URLParam(r, "action")
		run(w, r, s, func(e *editor.Editor) (editor.PagesState, error) {
			pages := e.Pages()
			var err error
			switch action {
			case "switch":
				err = pages.SwitchToPage(id)
			case "duplicate":
				_, err = pages.DuplicatePage(id)
			case "lock":
				err = pages.ToggleLock(id)
			case "save":
				if err = pages.SwitchToPage(id); err == nil {
					err = pages.SaveCurrentPage()
				}
			default:
				err = fmt.Errorf("%w: unknown page action %q", core.ErrInvalidArgument, action)
			}
			return pagesState(e), err
		})
	})
}

func HandleRenamePage(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		var req PageRequest
		if err := decode(r, &req); err != nil {
			respondError(w, r, err)
			return
		}
		id := chi.URLParam(r, "pageId")
		run(w, r, s, func(e *editor.Editor) (editor.PagesState, error) {
			err := e.Pages().RenamePage(id, req.Name)
			return pagesState(e), err
		})
	})
}

func HandleDeletePage(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		id := chi.URLParam(r, "pageId")
		run(w, r, s, func(e *editor.Editor) (editor.PagesState, error) {
			err := e.Pages().DeletePage(id)
			return pagesState(e), err
		})
	})
}

func drawingState(e *editor.Editor) DrawingState {
	return DrawingState{Enabled: e.Drawing().Enabled(), Settings: e.Drawing().Settings()}
}

func HandleGetDrawing(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		run(w, r, s, func(e *editor.Editor) (DrawingState, error) {
			return drawingState(e), nil
		})
	})
}

func HandleDrawing(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		var req DrawingRequest
		if err := decode(r, &req); err != nil {
			respondError(w, r, err)
			return
		}
		run(w, r, s, func(e *editor.Editor) (DrawingState, error) {
			d := e.Drawing()
			if req.Enabled != nil {
				if *req.Enabled {
					d.EnableDrawingMode()
				} else {
					d.DisableDrawingMode()
				}
			}
			if req.Settings != nil {
				if err := d.ChangeDrawSettings(*req.Settings); err != nil {
					return DrawingState{}, err
				}
			}
			return drawingState(e), nil
		})
	})
}

func HandleClearDrawing(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		run(w, r, s, func(e *editor.Editor) (map[string]int, error) {
			return map[string]int{"cleared": e.Drawing().ClearDrawing()}, nil
		})
	})
}

func HandleUndoStroke(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		run(w, r, s, func(e *editor.Editor) (map[string]bool, error) {
			return map[string]bool{"removed": e.Drawing().UndoLastStroke()}, nil
		})
	})
}

// HandleExport writes the current page as png, jpeg, svg or json.
func HandleExport(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		format := strings.ToLower(r.URL.Query().Get("format"))
		if format == "" {
			format = "png"
		}

		var (
			contentType string
			body        []byte
		)
		err := s.Do(r.Context(), func(e *editor.Editor) error {
			switch format {
			case "svg":
				svg, err := e.SaveAsVector()
				contentType, body = "image/svg+xml", []byte(svg)
				return err
			case "json":
				doc, err := e.SaveAsDocument()
				contentType, body = "application/json", []byte(doc)
				return err
			default:
				uri, err := e.SaveAsImage(format)
				if err != nil {
					return err
				}
				contentType, body, err = core.DecodeDataURI(uri)
				return err
			}
		})
		if err != nil {
			respondError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Write(body)
	})
}

func HandleLoadDocument(reg *Registry) http.HandlerFunc {
	return withSession(reg, func(w http.ResponseWriter, r *http.Request, s *Session) {
		data := new(strings.Builder)
		if _, err := io.Copy(data, r.Body); err != nil {
			respondError(w, r, fmt.Errorf("%w: %v", core.ErrInvalidArgument, err))
			return
		}
		run(w, r, s, func(e *editor.Editor) (editor.Size, error) {
			if err := e.LoadDocument(data.String()); err != nil {
				return editor.Size{}, err
			}
			return e.WorkspaceSize(), nil
		})
	})
}
