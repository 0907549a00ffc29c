package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type run struct {
	code   int
	stdout string
	stderr string
}

func execute(t *testing.T, args ...string) run {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), args, &stdout, &stderr)
	return run{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func sqliteArgs(t *testing.T) []string {
	t.Helper()
	t.Setenv("IPKSA_CONFIG", "")
	return []string{"--driver", "sqlite", "--database-url", filepath.Join(t.TempDir(), "cli.db"), "--log-level", "error"}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func hadithTree(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "hadiths")
	writeFile(t, filepath.Join(root, "bukhari", "a.json"), `[
		{"id": 1, "idInBook": 1, "bookId": 1, "chapterId": 1, "arabic": "إنما الأعمال بالنيات",
		 "english": {"narrator": "Umar", "text": "Actions are by intentions"}},
		{"id": 2, "idInBook": 2, "bookId": 1, "arabic": "نص"}
	]`)
	return root
}

func TestLoadHadithsThenVerify(t *testing.T) {
	base := sqliteArgs(t)
	args := append([]string{"load", "hadiths", "--source", hadithTree(t), "--batch-size", "1", "--verify"}, base...)
	r := execute(t, args...)
	if r.code != 0 {
		t.Fatalf("exit %d, stderr: %s", r.code, r.stderr)
	}
	for _, want := range []string{"hadith load summary", "Loaded", "Total hadiths", "Hadiths by book"} {
		if !strings.Contains(r.stdout, want) {
			t.Fatalf("stdout missing %q:\n%s", want, r.stdout)
		}
	}

	again := execute(t, append([]string{"verify"}, base...)...)
	if again.code != 0 || !strings.Contains(again.stdout, "Data verification") {
		t.Fatalf("verify exit %d: %s %s", again.code, again.stdout, again.stderr)
	}
}

func TestLoadMarkers(t *testing.T) {
	base := sqliteArgs(t)
	csvPath := filepath.Join(t.TempDir(), "markers.csv")
	writeFile(t, csvPath, "id,parent,depth,marker\nE0.1,E0,1,Birth\nE0,,0,Pre-prophetic era\n")

	r := execute(t, append([]string{"load", "markers", "--source", csvPath}, base...)...)
	if r.code != 0 || !strings.Contains(r.stdout, "marker load summary") {
		t.Fatalf("exit %d, stdout %s, stderr %s", r.code, r.stdout, r.stderr)
	}
}

func TestFatalMarkerViolationExitsNonZero(t *testing.T) {
	base := sqliteArgs(t)
	csvPath := filepath.Join(t.TempDir(), "markers.csv")
	writeFile(t, csvPath, "id,parent,depth,marker\nE0,,1,Era\nE0.1,E0,1,Event\n")

	r := execute(t, append([]string{"load", "markers", "--source", csvPath}, base...)...)
	if r.code != 1 {
		t.Fatalf("expected exit 1, got %d", r.code)
	}
	if !strings.Contains(r.stdout, "Integrity violations") {
		t.Fatalf("summary must be printed on failure:\n%s", r.stdout)
	}
	if !strings.Contains(r.stderr, "invariant_violation") {
		t.Fatalf("stderr should carry the error: %s", r.stderr)
	}
}

func TestMissingSourceIsAWarning(t *testing.T) {
	base := sqliteArgs(t)
	r := execute(t, append([]string{"load", "hadiths", "--source", filepath.Join(t.TempDir(), "absent")}, base...)...)
	if r.code != 0 {
		t.Fatalf("missing root should not be fatal, exit %d: %s", r.code, r.stderr)
	}
	if !strings.Contains(r.stderr, "Warning") {
		t.Fatalf("expected a warning on stderr: %s", r.stderr)
	}
}

func TestDryRunWritesNothing(t *testing.T) {
	t.Setenv("IPKSA_CONFIG", "")
	dbPath := filepath.Join(t.TempDir(), "dry.db")
	base := []string{"--driver", "sqlite", "--database-url", dbPath, "--log-level", "error"}

	r := execute(t, append([]string{"load", "hadiths", "--dry-run", "--source", hadithTree(t)}, base...)...)
	if r.code != 0 || !strings.Contains(r.stdout, "(dry run)") {
		t.Fatalf("exit %d, stdout %s, stderr %s", r.code, r.stdout, r.stderr)
	}
	csv := filepath.Join(t.TempDir(), "markers.csv")
	writeFile(t, csv, "id,parent,depth,marker\nE0,,0,Era\nE0.1,E0,1,Event\n")
	r = execute(t, append([]string{"load", "markers", "--dry-run", "--source", csv}, base...)...)
	if r.code != 0 || !strings.Contains(r.stdout, "(dry run)") {
		t.Fatalf("exit %d, stdout %s, stderr %s", r.code, r.stdout, r.stderr)
	}
	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatalf("dry run created the database file: %v", err)
	}
}

func TestConfigErrors(t *testing.T) {
	base := sqliteArgs(t)
	if r := execute(t, append([]string{"load", "hadiths"}, base...)...); r.code != 1 || !strings.Contains(r.stderr, "--source") {
		t.Fatalf("missing --source: exit %d, stderr %s", r.code, r.stderr)
	}
	if r := execute(t, "migrate", "--driver", "oracle", "--database-url", "x"); r.code != 1 {
		t.Fatalf("unknown driver should exit 1, got %d", r.code)
	}
}

func TestMigrate(t *testing.T) {
	r := execute(t, append([]string{"migrate"}, sqliteArgs(t)...)...)
	if r.code != 0 || !strings.Contains(r.stdout, "Schema up to date (7 tables)") {
		t.Fatalf("exit %d, stdout %s, stderr %s", r.code, r.stdout, r.stderr)
	}
}
