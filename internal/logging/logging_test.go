package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestSetupWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(&buf, slog.LevelInfo)

	logger.Info("server started", slog.String("addr", ":8080"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["msg"] != "server started" {
		t.Errorf("msg = %v, want server started", entry["msg"])
	}
	if entry["addr"] != ":8080" {
		t.Errorf("addr = %v, want :8080", entry["addr"])
	}
}

func TestSetupLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(&buf, slog.LevelInfo)

	logger.Debug("noise")
	if buf.Len() != 0 {
		t.Errorf("debug record written at info level: %s", buf.String())
	}
}

func TestSetupDefaultEnv(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupDefault(&buf, "development")

	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be enabled outside production")
	}

	var prodBuf bytes.Buffer
	logger = SetupDefault(&prodBuf, "production")
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be disabled in production")
	}
}
