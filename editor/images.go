package editor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	// Registered decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"canvas-editor/core"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// maxImageBytes bounds downloads of remote images.
const maxImageBytes = 32 << 20

// ImageLoader resolves an image source into pixels.
type ImageLoader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// HTTPImageLoader decodes data URIs and downloads http(s) URLs.
type HTTPImageLoader struct {
	Client *http.Client
}

// NewImageLoader returns a loader using client, or a client with a 30s timeout.
func NewImageLoader(client *http.Client) *HTTPImageLoader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPImageLoader{Client: client}
}

func (l *HTTPImageLoader) Load(ctx context.Context, src string) (image.Image, error) {
	var data []byte
	switch {
	case core.IsDataURI(src):
		_, payload, err := core.DecodeDataURI(src)
		if err != nil {
			return nil, err
		}
		data = payload
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, err
		}
		resp, err := l.Client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
		}
		data, err = io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: image source %q", core.ErrUnsupported, truncate(src, 32))
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
