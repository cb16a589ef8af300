package core

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// EncodeDataURI returns a base64 data URI for data.
func EncodeDataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// IsDataURI reports whether s looks like a data URI.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// DecodeDataURI splits a data URI into its media type and payload.
func DecodeDataURI(s string) (string, []byte, error) {
	if !IsDataURI(s) {
		return "", nil, fmt.Errorf("not a data uri")
	}
	meta, payload, ok := strings.Cut(s[len("data:"):], ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data uri: missing comma")
	}
	mime := meta
	isBase64 := false
	if strings.HasSuffix(meta, ";base64") {
		mime = strings.TrimSuffix(meta, ";base64")
		isBase64 = true
	}
	if mime == "" {
		mime = "text/plain"
	}
	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("malformed data uri: %w", err)
		}
		return mime, data, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("malformed data uri: %w", err)
	}
	return mime, []byte(text), nil
}
