package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func reset() {
	CloseAll()
	logsDir = ""
	opts = Options{}
	logLevel = LevelInfo
}

func TestInitialize_DisabledIsNoOp(t *testing.T) {
	defer reset()

	dir := t.TempDir()
	if err := Initialize(dir, Options{DebugMode: false}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	Store("this should go nowhere")
	if _, err := os.Stat(filepath.Join(dir, "logs")); !os.IsNotExist(err) {
		t.Error("logs directory should not be created when debug mode is off")
	}
}

func TestInitialize_DebugWritesCategoryFiles(t *testing.T) {
	defer reset()

	dir := t.TempDir()
	if err := Initialize(dir, Options{DebugMode: true, Level: "debug"}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	Store("cache replaced: %d posts", 3)
	StoreError("boom")
	CloseAll()

	entries, err := os.ReadDir(filepath.Join(dir, "logs"))
	if err != nil {
		t.Fatalf("reading logs dir: %v", err)
	}

	var storeFile string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), "_store.log") {
			storeFile = filepath.Join(dir, "logs", e.Name())
		}
	}
	if storeFile == "" {
		t.Fatal("expected a store category log file")
	}

	data, err := os.ReadFile(storeFile)
	if err != nil {
		t.Fatalf("reading store log: %v", err)
	}
	if !strings.Contains(string(data), "cache replaced: 3 posts") {
		t.Errorf("missing info entry in %q", string(data))
	}
	if !strings.Contains(string(data), "[ERROR] boom") {
		t.Errorf("missing error entry in %q", string(data))
	}
}

func TestIsCategoryEnabled_Filter(t *testing.T) {
	defer reset()

	dir := t.TempDir()
	err := Initialize(dir, Options{
		DebugMode:  true,
		Categories: map[string]bool{"store": false},
	})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if IsCategoryEnabled(CategoryStore) {
		t.Error("store category should be disabled")
	}
	if !IsCategoryEnabled(CategorySession) {
		t.Error("unlisted categories should default to enabled")
	}
}
