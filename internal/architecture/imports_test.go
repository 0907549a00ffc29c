package architecture_test

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

type importSite struct {
	file string
	imp  string
}

// walkImports calls fn for every import of every Go file under internal/.
func walkImports(t *testing.T, fn func(rel, imp string)) string {
	t.Helper()

	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root, err := findModuleRoot(start)
	if err != nil {
		t.Fatalf("find module root: %v", err)
	}
	modulePath, err := readModulePath(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("read module path: %v", err)
	}

	fset := token.NewFileSet()
	walkErr := filepath.WalkDir(filepath.Join(root, "internal"), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case ".git", "vendor", "testdata", ".gocache":
				return filepath.SkipDir
			default:
				return nil
			}
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, spec := range f.Imports {
			if spec == nil || spec.Path == nil {
				continue
			}
			imp, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				continue
			}
			fn(filepath.ToSlash(rel), imp)
		}
		return nil
	})
	if walkErr != nil {
		t.Fatalf("walk internal/: %v", walkErr)
	}
	return modulePath
}

func TestImportBoundaries(t *testing.T) {
	var sites []importSite
	modulePath := walkImports(t, func(rel, imp string) {
		sites = append(sites, importSite{file: rel, imp: imp})
	})

	var b strings.Builder
	for _, s := range sites {
		for _, bad := range disallowedImports(modulePath, layerFor(s.file)) {
			if strings.HasPrefix(s.imp, bad) {
				fmt.Fprintf(&b, "- %s imports %q (disallowed: %q)\n", s.file, s.imp, bad)
				break
			}
		}
	}
	if b.Len() > 0 {
		t.Fatal("import boundary violations:\n" + b.String())
	}
}

// Database drivers stay behind internal/data so the loaders only ever see
// classified errors.
func TestDriversOnlyInData(t *testing.T) {
	var b strings.Builder
	walkImports(t, func(rel, imp string) {
		if strings.HasPrefix(rel, "internal/data/") {
			return
		}
		if strings.HasPrefix(imp, "gorm.io/driver/") || strings.HasPrefix(imp, "github.com/jackc/pgx/") {
			fmt.Fprintf(&b, "- %s imports %q\n", rel, imp)
		}
	})
	if b.Len() > 0 {
		t.Fatal("database driver imports found outside internal/data:\n" + b.String())
	}
}

func layerFor(rel string) string {
	switch {
	case strings.HasPrefix(rel, "internal/pkg/"):
		return "pkg"
	case strings.HasPrefix(rel, "internal/platform/"):
		return "platform"
	case strings.HasPrefix(rel, "internal/domain/"):
		return "domain"
	case strings.HasPrefix(rel, "internal/data/"):
		return "data"
	case strings.HasPrefix(rel, "internal/ingestion/"):
		return "ingestion"
	case strings.HasPrefix(rel, "internal/verify/"):
		return "verify"
	default:
		return ""
	}
}

func disallowedImports(modulePath string, layer string) []string {
	internal := func(dirs ...string) []string {
		out := make([]string, 0, len(dirs))
		for _, d := range dirs {
			out = append(out, modulePath+"/internal/"+d+"/")
		}
		return out
	}
	switch layer {
	case "pkg":
		return []string{modulePath + "/internal/"}
	case "platform":
		return internal("domain", "data", "ingestion", "verify", "cli", "app")
	case "domain":
		return internal("data", "ingestion", "verify", "observability", "cli", "app")
	case "data":
		return internal("ingestion", "verify", "cli", "app")
	case "ingestion":
		return internal("verify", "cli", "app")
	case "verify":
		return internal("ingestion", "cli", "app")
	default:
		return nil
	}
}

func findModuleRoot(start string) (string, error) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found from %s", start)
		}
		dir = parent
	}
}

func readModulePath(goModPath string) (string, error) {
	f, err := os.Open(goModPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if !strings.HasPrefix(line, "module ") {
			continue
		}
		mp := strings.TrimSpace(strings.TrimPrefix(line, "module "))
		if mp == "" {
			return "", fmt.Errorf("empty module path in %s", goModPath)
		}
		return mp, nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module path not found in %s", goModPath)
}
