package source

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/yungbote/ipksa-ingest/internal/domain/ingesterr"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func collect(seq *FileSeq) []string {
	var out []string
	for p := range seq.All() {
		out = append(out, p)
	}
	return out
}

func TestJSONFilesOrderAndFilter(t *testing.T) {
	root := filepath.Join(t.TempDir(), "hadiths")
	for _, rel := range []string{"b/2.json", "a/1.JSON", "a/notes.txt", "c.json", ".git/x.json", "a/.hidden/y.json"} {
		writeFile(t, filepath.Join(root, rel))
	}

	seq := JSONFiles(root)
	got := collect(seq)
	want := []string{
		filepath.Join(root, "a", "1.JSON"),
		filepath.Join(root, "b", "2.json"),
		filepath.Join(root, "c.json"),
	}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if err := seq.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again := collect(seq); len(again) != 0 {
		t.Fatalf("sequence must be single-use, got %v", again)
	}
}

func TestFilesEarlyStop(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "1.json"))
	writeFile(t, filepath.Join(root, "2.json"))
	n := 0
	for range JSONFiles(root).All() {
		n++
		break
	}
	if n != 1 {
		t.Fatalf("expected to stop after one file, got %d", n)
	}
}

func TestMissingRoot(t *testing.T) {
	seq := JSONFiles(filepath.Join(t.TempDir(), "nope"))
	if got := collect(seq); len(got) != 0 {
		t.Fatalf("missing root should yield nothing, got %v", got)
	}
	if !ingesterr.IsCode(seq.Err(), ingesterr.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", seq.Err())
	}
}

func TestEmptyRoot(t *testing.T) {
	seq := JSONFiles(t.TempDir())
	if got := collect(seq); len(got) != 0 || seq.Err() != nil {
		t.Fatalf("empty root: got %v err %v", got, seq.Err())
	}
}

func TestSingleFile(t *testing.T) {
	dir := t.TempDir()
	csv := filepath.Join(dir, "markers.csv")
	writeFile(t, csv)

	if got := collect(SingleFile(csv, "csv")); !slices.Equal(got, []string{csv}) {
		t.Fatalf("got %v", got)
	}
	wrong := SingleFile(csv, ".json")
	if got := collect(wrong); len(got) != 0 || !ingesterr.IsCode(wrong.Err(), ingesterr.CodeNotFound) {
		t.Fatalf("extension mismatch: got %v err %v", got, wrong.Err())
	}
	missing := SingleFile(filepath.Join(dir, "none.csv"), ".csv")
	if got := collect(missing); len(got) != 0 || !ingesterr.IsCode(missing.Err(), ingesterr.CodeNotFound) {
		t.Fatalf("missing file: got %v err %v", got, missing.Err())
	}
}

func TestLabel(t *testing.T) {
	root := filepath.Join("data", "hadiths")
	if got := Label(root, filepath.Join(root, "bukhari", "1.json")); got != "hadiths/bukhari/1.json" {
		t.Fatalf("Label = %q", got)
	}
	if got := Label(root+string(filepath.Separator), filepath.Join(root, "x.json")); got != "hadiths/x.json" {
		t.Fatalf("trailing separator: Label = %q", got)
	}
}
