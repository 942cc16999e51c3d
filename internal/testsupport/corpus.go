package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"loom/internal/config"
	"loom/internal/manifest"
)

// WriteCorpusSubset creates a raw corpus subset with count utterances:
// a transcript manifest, a recording manifest, and optionally a
// language map.
func WriteCorpusSubset(t testing.TB, cfg *config.Config, name string, count int, withLang bool) {
	t.Helper()

	dir := filepath.Join(cfg.Paths.CorpusDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create corpus subset %s: %v", name, err)
	}

	text := make(map[string]string, count)
	wav := make(map[string]string, count)
	lang := make(map[string]string, count)
	for i := 1; i <= count; i++ {
		id := fmt.Sprintf("%s-%03d", name, i)
		text[id] = fmt.Sprintf("hello world %d", i)
		wav[id] = fmt.Sprintf("/audio/%s.wav", id)
		lang[id] = "en-us"
	}

	WriteManifest(t, filepath.Join(dir, "text"), text)
	WriteManifest(t, filepath.Join(dir, "wav.scp"), wav)
	if withLang {
		WriteManifest(t, filepath.Join(dir, "utt2lang"), lang)
	}
}

// WriteManifest persists a manifest fixture, failing the test on error.
func WriteManifest(t testing.TB, path string, entries map[string]string) {
	t.Helper()
	if err := manifest.WriteFile(path, entries); err != nil {
		t.Fatalf("write manifest %s: %v", path, err)
	}
}
