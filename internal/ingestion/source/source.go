// Package source enumerates input files for the loaders.
package source

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/yungbote/ipksa-ingest/internal/domain/ingesterr"
)

// FileSeq is a lazy, single-use sequence of file paths. Paths are produced in
// lexical order as the walk reaches them.
type FileSeq struct {
	root     string
	ext      string
	single   bool
	consumed bool
	errs     []error
}

// Files walks root recursively for regular files whose extension matches ext
// (case-insensitive, with or without the leading dot). Hidden directories are
// skipped.
func Files(root, ext string) *FileSeq {
	return &FileSeq{root: root, ext: normalizeExt(ext)}
}

func JSONFiles(root string) *FileSeq { return Files(root, ".json") }

// SingleFile yields path once if it exists and matches ext.
func SingleFile(path, ext string) *FileSeq {
	return &FileSeq{root: path, ext: normalizeExt(ext), single: true}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func (s *FileSeq) matches(name string) bool {
	return s.ext == "" || strings.ToLower(filepath.Ext(name)) == s.ext
}

// All returns the sequence. The second and later calls yield nothing.
func (s *FileSeq) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		if s.consumed {
			return
		}
		s.consumed = true

		info, err := os.Stat(s.root)
		if err != nil {
			s.record(ingesterr.NewError(ingesterr.CodeNotFound, "source.enumerate", fmt.Sprintf("source %s not found", s.root), err))
			return
		}
		if s.single {
			if info.Mode().IsRegular() && s.matches(info.Name()) {
				yield(s.root)
				return
			}
			s.record(ingesterr.NewError(ingesterr.CodeNotFound, "source.enumerate", fmt.Sprintf("source %s is not a %s file", s.root, s.ext), nil))
			return
		}
		if !info.IsDir() {
			s.record(ingesterr.NewError(ingesterr.CodeNotFound, "source.enumerate", fmt.Sprintf("source %s is not a directory", s.root), nil))
			return
		}

		stop := errors.New("stop")
		walkErr := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable subtree: note it and keep walking the rest.
				s.record(ingesterr.Wrap(ingesterr.CodeParse, "source.walk", err))
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if path != s.root && strings.HasPrefix(d.Name(), ".") {
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || !s.matches(d.Name()) {
				return nil
			}
			if !yield(path) {
				return stop
			}
			return nil
		})
		if walkErr != nil && !errors.Is(walkErr, stop) {
			s.record(ingesterr.Wrap(ingesterr.CodeParse, "source.walk", walkErr))
		}
	}
}

func (s *FileSeq) record(err error) { s.errs = append(s.errs, err) }

// Errors returns each problem met while enumerating, in the order found.
func (s *FileSeq) Errors() []error { return append([]error(nil), s.errs...) }

// Err reports problems met while enumerating: a missing root, or subtrees that
// could not be read. It is only meaningful once the sequence has been drained.
func (s *FileSeq) Err() error { return errors.Join(s.errs...) }

// Label names path relative to the parent of root, so files keep their
// collection directory in provenance ("bukhari/vol1.json").
func Label(root, path string) string {
	base := filepath.Dir(filepath.Clean(root))
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
