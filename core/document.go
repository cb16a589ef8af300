package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DocumentVersion is written into every serialized document.
const DocumentVersion = "1"

// DocumentKeys is the allow-list of custom fields kept by exports and snapshots.
var DocumentKeys = []string{"id", "name", "originalFont", "gradient", "layerName"}

type (
	// Document is the persisted scene format exchanged with page storage and files.
	Document struct {
		Version string         `json:"version"`
		Width   float64        `json:"width"`
		Height  float64        `json:"height"`
		Objects []ObjectRecord `json:"objects"`
	}

	// ObjectRecord is the wire form of one object.
	ObjectRecord struct {
		Object
		Children []ObjectRecord            `json:"objects,omitempty"`
		Custom   map[string]json.RawMessage `json:"custom,omitempty"`
	}

	customField struct {
		get func(o *Object) (any, bool)
		set func(o *Object, raw json.RawMessage) error
	}
)

var customFields = map[string]customField{
	"id": {
		get: func(o *Object) (any, bool) { return o.ID, o.ID != "" },
		set: func(o *Object, raw json.RawMessage) error { return json.Unmarshal(raw, &o.ID) },
	},
	"name": {
		get: func(o *Object) (any, bool) { return o.Name, o.Name != "" },
		set: func(o *Object, raw json.RawMessage) error { return json.Unmarshal(raw, &o.Name) },
	},
	"originalFont": {
		get: func(o *Object) (any, bool) { return o.OriginalFont, o.OriginalFont != "" },
		set: func(o *Object, raw json.RawMessage) error { return json.Unmarshal(raw, &o.OriginalFont) },
	},
	"gradient": {
		get: func(o *Object) (any, bool) { return o.GradientSpec, o.GradientSpec != nil },
		set: func(o *Object, raw json.RawMessage) error {
			var d GradientDescriptor
			if err := json.Unmarshal(raw, &d); err != nil {
				return err
			}
			o.GradientSpec = &d
			return nil
		},
	},
	"layerName": {
		get: func(o *Object) (any, bool) { return o.LayerName, o.LayerName != "" },
		set: func(o *Object, raw json.RawMessage) error { return json.Unmarshal(raw, &o.LayerName) },
	},
}

// EncodeObject converts o to its wire form, keeping only the custom fields named in keys.
func EncodeObject(o *Object, keys []string) (ObjectRecord, error) {
	rec := ObjectRecord{Object: *o}
	rec.Object.Objects = nil
	for _, key := range keys {
		field, ok := customFields[key]
		if !ok {
			continue
		}
		value, present := field.get(o)
		if !present {
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return ObjectRecord{}, fmt.Errorf("encode %s: %w", key, err)
		}
		if rec.Custom == nil {
			rec.Custom = make(map[string]json.RawMessage)
		}
		rec.Custom[key] = raw
	}
	for _, child := range o.Objects {
		c, err := EncodeObject(child, keys)
		if err != nil {
			return ObjectRecord{}, err
		}
		rec.Children = append(rec.Children, c)
	}
	return rec, nil
}

// DecodeObject converts a wire record back into an object. Unknown custom keys are ignored.
func DecodeObject(rec ObjectRecord) (*Object, error) {
	if !rec.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown object kind %q", ErrInvalidDocument, rec.Kind)
	}
	o := rec.Object
	o.Objects = nil
	// Documents written by other tools may omit scale.
	if o.ScaleX == 0 && o.ScaleY == 0 {
		o.ScaleX, o.ScaleY = 1, 1
	}
	for key, raw := range rec.Custom {
		field, ok := customFields[key]
		if !ok {
			continue
		}
		if err := field.set(&o, raw); err != nil {
			return nil, fmt.Errorf("%w: custom field %s: %v", ErrInvalidDocument, key, err)
		}
	}
	for _, childRec := range rec.Children {
		child, err := DecodeObject(childRec)
		if err != nil {
			return nil, err
		}
		o.Objects = append(o.Objects, child)
	}
	return &o, nil
}

// Marshal encodes the document as JSON. Non-finite geometry makes it fail.
func (d *Document) Marshal() (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParseDocument decodes a serialized document.
func ParseDocument(s string) (*Document, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("%w: empty content", ErrInvalidDocument)
	}
	var doc Document
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	for _, rec := range doc.Objects {
		if !rec.Kind.Valid() {
			return nil, fmt.Errorf("%w: unknown object kind %q", ErrInvalidDocument, rec.Kind)
		}
	}
	return &doc, nil
}
