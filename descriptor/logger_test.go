package descriptor

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	path := filepath.Join(t.TempDir(), "board.yaml")
	if err := os.WriteFile(path, []byte(regularYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseFile(path); err != nil {
		t.Fatal(err)
	}
	entries := logs.FilterMessage("parsing descriptor").All()
	if len(entries) != 1 {
		t.Fatalf("logged %d parse entries, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["path"]; got != path {
		t.Errorf("path field = %v, want %s", got, path)
	}

	SetLogger(nil)
	if Logger() == nil {
		t.Fatal("nil logger not replaced")
	}
}
