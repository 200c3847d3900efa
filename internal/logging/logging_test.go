package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewLoggerToJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(NewLoggerTo(Config{Level: "debug", Format: "json"}, &buf), "state")
	logger.Debug().Str("key", "settings-storage").Msg("hydrated")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected a json line: %v (%q)", err, buf.String())
	}
	if line["component"] != "state" || line["key"] != "settings-storage" {
		t.Fatalf("unexpected fields: %#v", line)
	}
}

func TestNewLoggerToLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(Config{Level: "warn"}, &buf)
	logger.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level: %q", buf.String())
	}
}
