package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate runs the test in an empty directory with every key unset.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if c.ListenAddr != ":3002" {
		t.Errorf("ListenAddr mismatch: got %q", c.ListenAddr)
	}
	if c.Storage.Type != "memory" {
		t.Errorf("Storage type mismatch: got %q", c.Storage.Type)
	}
	if c.HistoryDebounce != 500*time.Millisecond {
		t.Errorf("HistoryDebounce mismatch: got %v", c.HistoryDebounce)
	}
	if c.HistoryLimit != 50 || c.ThumbnailSize != 64 {
		t.Errorf("Unexpected limits: %d %d", c.HistoryLimit, c.ThumbnailSize)
	}
	if c.WorkspaceWidth != 900 || c.WorkspaceHeight != 1200 {
		t.Errorf("Workspace mismatch: %vx%v", c.WorkspaceWidth, c.WorkspaceHeight)
	}
}

func TestLoad_Environment(t *testing.T) {
	isolate(t)
	t.Setenv("LISTEN_ADDR", "127.0.0.1:9000")
	t.Setenv("STORAGE_TYPE", "sqlite")
	t.Setenv("DATA_SOURCE_NAME", "pages.db")
	t.Setenv("HISTORY_DEBOUNCE", "2s")
	t.Setenv("HISTORY_LIMIT", "5")
	t.Setenv("WORKSPACE_WIDTH", "640.5")
	t.Setenv("FONT_DIR", "/fonts")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if c.ListenAddr != "127.0.0.1:9000" {
		t.Errorf("ListenAddr mismatch: got %q", c.ListenAddr)
	}
	if c.Storage.Type != "sqlite" || c.Storage.DataSourceName != "pages.db" {
		t.Errorf("Storage mismatch: %+v", c.Storage)
	}
	if c.HistoryDebounce != 2*time.Second || c.HistoryLimit != 5 {
		t.Errorf("History mismatch: %v %d", c.HistoryDebounce, c.HistoryLimit)
	}
	if c.WorkspaceWidth != 640.5 {
		t.Errorf("WorkspaceWidth mismatch: got %v", c.WorkspaceWidth)
	}
	if c.FontDir != "/fonts" {
		t.Errorf("FontDir mismatch: got %q", c.FontDir)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := isolate(t)
	yaml := "LOG_LEVEL: debug\nTHUMBNAIL_SIZE: 128\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	t.Setenv("THUMBNAIL_SIZE", "96")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if c.LogLevel != "debug" {
		t.Errorf("LogLevel mismatch: got %q", c.LogLevel)
	}
	if c.ThumbnailSize != 96 {
		t.Errorf("Environment should win over the file: got %d", c.ThumbnailSize)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown storage", map[string]string{"STORAGE_TYPE": "redis"}},
		{"s3 without bucket", map[string]string{"STORAGE_TYPE": "s3"}},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}},
		{"bad debounce", map[string]string{"HISTORY_DEBOUNCE": "soon"}},
		{"zero history", map[string]string{"HISTORY_LIMIT": "0"}},
		{"bad listen address", map[string]string{"LISTEN_ADDR": "nowhere"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("Expected a validation error")
			}
		})
	}
}

func TestLoad_S3WithBucket(t *testing.T) {
	isolate(t)
	t.Setenv("STORAGE_TYPE", "s3")
	t.Setenv("S3_BUCKET_NAME", "pages")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if c.Storage.BucketName != "pages" {
		t.Errorf("BucketName mismatch: got %q", c.Storage.BucketName)
	}
}
