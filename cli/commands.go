package cli

import (
	"canvas-editor/core"
	"canvas-editor/editor"
	"canvas-editor/handlers/api/sessions"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type command struct {
	usage   string
	summary string
	run     func(c *CLI, ctx context.Context, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"add":      {"add <rect|circle|triangle|line|text|icon|image|chart> [args]", "Add an object to the current page.", (*CLI).add},
		"del":      {"del", "Delete the selection.", (*CLI).del},
		"dup":      {"dup", "Duplicate the selection.", (*CLI).dup},
		"stack":    {"stack <forward|backward|front|back>", "Restack the selection.", (*CLI).stack},
		"style":    {"style [property value]", "Show the active style or set one property. Values are JSON or plain text.", (*CLI).style},
		"gradient": {"gradient <linear|radial|conic> <angle> <color:position[:opacity]>...", "Fill the selection with a gradient.", (*CLI).gradient},
		"undo":     {"undo", "Undo the last change.", (*CLI).undo},
		"redo":     {"redo", "Redo the last undone change.", (*CLI).redo},
		"size":     {"size <width> <height>", "Resize the workspace.", (*CLI).size},
		"bg":       {"bg <color c|transparent|pattern kind [color]|image src>", "Change the workspace background.", (*CLI).background},
		"layers":   {"layers", "List layers, top first.", (*CLI).layers},
		"layer":    {"layer <visible|lock|dup|select|remove|opacity|move> <id|from> [value|to]", "Change one layer.", (*CLI).layer},
		"pages":    {"pages", "List pages.", (*CLI).pages},
		"page":     {"page <add|switch|dup|lock|del|rename|move|save> [args]", "Manage pages.", (*CLI).page},
		"persist":  {"persist", "Write every page to the store.", (*CLI).persist},
		"draw":     {"draw <on|off|color c|width w|erase [size]|pen|clear|undo>", "Control freehand drawing.", (*CLI).draw},
		"export":   {"export <png|jpeg|svg|json> <file>", "Export the current page to a file.", (*CLI).export},
		"load":     {"load <file>", "Load a JSON document into the current page.", (*CLI).load},
		"help":     {"help [command]", "Show help.", (*CLI).help},
		"exit":     {"exit", "Leave the editor.", (*CLI).exit},
	}
	commands["quit"] = commands["exit"]
}

func (c *CLI) do(ctx context.Context, fn func(e *editor.Editor) error) error {
	return c.Session.Do(ctx, fn)
}

func parseFloats(args ...string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil || !core.Finite(v) {
			return nil, fmt.Errorf("%w: %q is not a number", core.ErrInvalidArgument, a)
		}
		out[i] = v
	}
	return out, nil
}

func parseInts(args ...string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", core.ErrInvalidArgument, a)
		}
		out[i] = v
	}
	return out, nil
}

func usageError(name string) error {
	return fmt.Errorf("%w: usage: %s", core.ErrInvalidArgument, commands[name].usage)
}

func (c *CLI) add(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("add")
	}
	kind, rest := args[0], args[1:]
	return c.do(ctx, func(e *editor.Editor) error {
		var (
			o   *core.Object
			err error
		)
		switch kind {
		case "rect":
			o = e.AddRect()
		case "circle":
			o = e.AddCircle()
		case "triangle":
			o = e.AddTriangle()
		case "line":
			o = e.AddLine()
		case "text":
			text := strings.Join(rest, " ")
			if text == "" {
				text = "Text"
			}
			o = e.AddText(text)
		case "icon":
			if len(rest) != 1 {
				return usageError("add")
			}
			o, err = e.AddIcon(rest[0])
		case "image":
			if len(rest) != 1 {
				return usageError("add")
			}
			if err := e.AddImage(rest[0]); err != nil {
				return err
			}
			c.printf("Loading image %s\n", rest[0])
			return nil
		case "chart":
			o, err = e.AddChart(chartSpec(rest))
		default:
			return usageError("add")
		}
		if err != nil {
			return err
		}
		c.printf("Added %s %s\n", o.Kind, o.ID)
		return nil
	})
}

// chartSpec reads "title label=value...". Values without a label are numbered.
func chartSpec(args []string) editor.ChartSpec {
	var spec editor.ChartSpec
	for _, a := range args {
		label, raw, found := strings.Cut(a, "=")
		if !found {
			raw = a
			label = strconv.Itoa(len(spec.Values) + 1)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			if spec.Title == "" {
				spec.Title = a
			}
			continue
		}
		spec.Labels = append(spec.Labels, label)
		spec.Values = append(spec.Values, v)
	}
	return spec
}

func (c *CLI) del(ctx context.Context, _ []string) error {
	return c.do(ctx, func(e *editor.Editor) error {
		c.printf("Deleted %d object(s)\n", e.Delete())
		return nil
	})
}

func (c *CLI) dup(ctx context.Context, _ []string) error {
	return c.do(ctx, func(e *editor.Editor) error {
		for _, o := range e.Duplicate() {
			c.printf("Added %s %s\n", o.Kind, o.ID)
		}
		return nil
	})
}

func (c *CLI) stack(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("stack")
	}
	return c.do(ctx, func(e *editor.Editor) error {
		switch args[0] {
		case "forward":
			e.BringForward()
		case "backward":
			e.SendBackwards()
		case "front":
			e.BringToFront()
		case "back":
			e.SendToBack()
		default:
			return usageError("stack")
		}
		return nil
	})
}

// styleValue treats input that is not valid JSON as a string.
func styleValue(args []string) json.RawMessage {
	raw := strings.Join(args, " ")
	if json.Valid([]byte(raw)) {
		return json.RawMessage(raw)
	}
	quoted, _ := json.Marshal(raw)
	return quoted
}

func (c *CLI) style(ctx context.Context, args []string) error {
	if len(args) == 1 {
		return usageError("style")
	}
	return c.do(ctx, func(e *editor.Editor) error {
		if len(args) > 1 {
			if err := sessions.ApplyStyle(e, args[0], styleValue(args[1:])); err != nil {
				return err
			}
		}
		c.printf("fill=%s stroke=%s strokeWidth=%g opacity=%g\n",
			e.ActiveFillColor(), e.ActiveStrokeColor(), e.ActiveStrokeWidth(), e.ActiveOpacity())
		c.printf("font=%s %g %s %s align=%s radius=%g\n",
			e.ActiveFontFamily(), e.ActiveFontSize(), e.ActiveFontWeight(), e.ActiveFontStyle(),
			e.ActiveTextAlign(), e.ActiveCornerRadius())
		return nil
	})
}

func (c *CLI) gradient(ctx context.Context, args []string) error {
	if len(args) < 4 {
		return usageError("gradient")
	}
	angle, err := parseFloats(args[1])
	if err != nil {
		return err
	}
	desc := core.GradientDescriptor{Type: core.GradientType(args[0]), Angle: angle[0]}
	for _, s := range args[2:] {
		parts := strings.Split(s, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return usageError("gradient")
		}
		nums, err := parseFloats(parts[1:]...)
		if err != nil {
			return err
		}
		stop := core.GradientStop{Color: parts[0], Position: nums[0], Opacity: 1}
		if len(nums) == 2 {
			stop.Opacity = nums[1]
		}
		desc.Stops = append(desc.Stops, stop)
	}
	return c.do(ctx, func(e *editor.Editor) error {
		return e.SetGradient(desc)
	})
}

func (c *CLI) printHistory(e *editor.Editor) {
	h := e.History()
	c.printf("History: %d step(s), undo=%t redo=%t\n", h.Len(), h.CanUndo(), h.CanRedo())
}

func (c *CLI) undo(ctx context.Context, _ []string) error {
	return c.do(ctx, func(e *editor.Editor) error {
		if err := e.History().Undo(); err != nil {
			return err
		}
		c.printHistory(e)
		return nil
	})
}

func (c *CLI) redo(ctx context.Context, _ []string) error {
	return c.do(ctx, func(e *editor.Editor) error {
		if err := e.History().Redo(); err != nil {
			return err
		}
		c.printHistory(e)
		return nil
	})
}

func (c *CLI) size(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("size")
	}
	dims, err := parseFloats(args...)
	if err != nil {
		return err
	}
	return c.do(ctx, func(e *editor.Editor) error {
		return e.ChangeSize(editor.Size{Width: dims[0], Height: dims[1]})
	})
}

func (c *CLI) background(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("bg")
	}
	bg := editor.Background{Kind: editor.BackgroundKind(args[0])}
	switch bg.Kind {
	case editor.BackgroundColor:
		if len(args) != 2 {
			return usageError("bg")
		}
		bg.Color = args[1]
	case editor.BackgroundPattern:
		if len(args) < 2 {
			return usageError("bg")
		}
		bg.Pattern = editor.PatternKind(args[1])
		if len(args) > 2 {
			bg.PatternColor = args[2]
		}
	case editor.BackgroundImage:
		if len(args) != 2 {
			return usageError("bg")
		}
		bg.Src = args[1]
	}
	return c.do(ctx, func(e *editor.Editor) error {
		return e.ChangeBackground(bg)
	})
}

func (c *CLI) layers(ctx context.Context, _ []string) error {
	return c.do(ctx, func(e *editor.Editor) error {
		for i, l := range e.Layers().Layers() {
			flags := ""
			if !l.Visible {
				flags += " hidden"
			}
			if l.Locked {
				flags += " locked"
			}
			c.printf("%2d %s %-20s %-6s opacity=%g%s\n", i, l.ID, l.Name, l.Kind, l.Opacity, flags)
		}
		return nil
	})
}

func (c *CLI) layer(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageError("layer")
	}
	action, id := args[0], args[1]
	return c.do(ctx, func(e *editor.Editor) error {
		layers := e.Layers()
		switch action {
		case "visible":
			return layers.ToggleVisibility(id)
		case "lock":
			return layers.ToggleLock(id)
		case "select":
			return layers.SelectLayer(id)
		case "remove":
			return layers.RemoveLayer(id)
		case "dup":
			l, err := layers.DuplicateLayer(id)
			if err == nil {
				c.printf("Added layer %s\n", l.ID)
			}
			return err
		case "opacity":
			if len(args) != 3 {
				return usageError("layer")
			}
			v, err := parseFloats(args[2])
			if err != nil {
				return err
			}
			return layers.UpdateLayerOpacity(id, v[0])
		case "move":
			if len(args) != 3 {
				return usageError("layer")
			}
			idx, err := parseInts(args[1], args[2])
			if err != nil {
				return err
			}
			return layers.ReorderLayers(idx[0], idx[1])
		}
		return usageError("layer")
	})
}

func (c *CLI) printPages(e *editor.Editor) {
	current := e.Pages().Current()
	for i, p := range e.Pages().Pages() {
		marker := " "
		if p.ID == current {
			marker = "*"
		}
		lock := ""
		if p.Locked {
			lock = " locked"
		}
		c.printf("%s%2d %s %s (%gx%g)%s\n", marker, i, p.ID, p.Name, p.Width, p.Height, lock)
	}
}

func (c *CLI) pages(ctx context.Context, _ []string) error {
	return c.do(ctx, func(e *editor.Editor) error {
		c.printPages(e)
		return nil
	})
}

func (c *CLI) page(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("page")
	}
	action, rest := args[0], args[1:]
	return c.do(ctx, func(e *editor.Editor) error {
		pages := e.Pages()
		var err error
		switch {
		case action == "add":
			p := pages.AddPage(strings.Join(rest, " "))
			c.printf("Added page %s\n", p.ID)
		case action == "save":
			err = pages.SaveCurrentPage()
		case action == "move" && len(rest) == 2:
			var idx []int
			if idx, err = parseInts(rest...); err == nil {
				err = pages.MovePage(idx[0], idx[1])
			}
		case action == "rename" && len(rest) >= 2:
			err = pages.RenamePage(rest[0], strings.Join(rest[1:], " "))
		case len(rest) != 1:
			return usageError("page")
		case action == "switch":
			err = pages.SwitchToPage(rest[0])
		case action == "dup":
			_, err = pages.DuplicatePage(rest[0])
		case action == "lock":
			err = pages.ToggleLock(rest[0])
		case action == "del":
			err = pages.DeletePage(rest[0])
		default:
			return usageError("page")
		}
		if err != nil {
			return err
		}
		c.printPages(e)
		return nil
	})
}

func (c *CLI) persist(ctx context.Context, _ []string) error {
	return c.do(ctx, func(e *editor.Editor) error {
		if err := e.Pages().Persist(ctx); err != nil {
			return err
		}
		c.printf("Persisted project %s\n", e.Pages().ProjectID())
		return nil
	})
}

func (c *CLI) draw(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("draw")
	}
	return c.do(ctx, func(e *editor.Editor) error {
		d := e.Drawing()
		settings := d.Settings()
		switch args[0] {
		case "on":
			d.EnableDrawingMode()
		case "off":
			d.DisableDrawingMode()
		case "clear":
			c.printf("Cleared %d stroke(s)\n", d.ClearDrawing())
			return nil
		case "undo":
			if !d.UndoLastStroke() {
				c.printf("No stroke to undo\n")
			}
			return nil
		case "pen":
			settings.Mode = editor.DrawModeDraw
			return d.ChangeDrawSettings(settings)
		case "erase":
			settings.Mode = editor.DrawModeErase
			if len(args) == 2 {
				v, err := parseFloats(args[1])
				if err != nil {
					return err
				}
				settings.EraserSize = v[0]
			}
			return d.ChangeDrawSettings(settings)
		case "color":
			if len(args) != 2 {
				return usageError("draw")
			}
			settings.Color = args[1]
			return d.ChangeDrawSettings(settings)
		case "width":
			if len(args) != 2 {
				return usageError("draw")
			}
			v, err := parseFloats(args[1])
			if err != nil {
				return err
			}
			settings.Width = v[0]
			return d.ChangeDrawSettings(settings)
		default:
			return usageError("draw")
		}
		return nil
	})
}

func (c *CLI) export(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("export")
	}
	format, path := strings.ToLower(args[0]), args[1]
	var data []byte
	err := c.do(ctx, func(e *editor.Editor) error {
		switch format {
		case "svg":
			svg, err := e.SaveAsVector()
			data = []byte(svg)
			return err
		case "json":
			doc, err := e.SaveAsDocument()
			data = []byte(doc)
			return err
		default:
			uri, err := e.SaveAsImage(format)
			if err != nil {
				return err
			}
			_, data, err = core.DecodeDataURI(uri)
			return err
		}
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	c.printf("Wrote %d bytes to %s\n", len(data), path)
	return nil
}

func (c *CLI) load(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("load")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	return c.do(ctx, func(e *editor.Editor) error {
		return e.LoadDocument(string(data))
	})
}

func (c *CLI) help(_ context.Context, args []string) error {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	c.printHelp(name)
	return nil
}

func (c *CLI) exit(context.Context, []string) error {
	return ErrExit
}
