// Package hadith turns raw JSON hadith records into canonical rows and loads
// them through the batch inserter.
package hadith

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"

	domain "github.com/yungbote/ipksa-ingest/internal/domain/hadith"
	"github.com/yungbote/ipksa-ingest/internal/domain/ingesterr"
	"github.com/yungbote/ipksa-ingest/internal/pkg/pointers"
)

const (
	maxBookNameLen   = 255
	maxSourceFileLen = 500
)

// FieldRule extracts one candidate value from a raw record.
type FieldRule func(raw any) (any, bool)

// Path compiles a JSONPath expression into a rule. JSON null counts as absent.
func Path(expr string) FieldRule {
	x := jp.MustParseString(expr)
	return func(raw any) (any, bool) {
		v := x.First(raw)
		return v, v != nil
	}
}

// Field is an ordered list of rules; the first rule that finds a value wins.
type Field struct {
	Name  string
	Rules []FieldRule
}

func field(name string, paths ...string) Field {
	f := Field{Name: name}
	for _, p := range paths {
		f.Rules = append(f.Rules, Path(p))
	}
	return f
}

func (f Field) Resolve(raw any) (any, bool) {
	for _, rule := range f.Rules {
		if v, ok := rule(raw); ok {
			return v, true
		}
	}
	return nil, false
}

// Nested forms come before flat legacy keys; camelCase before snake_case.
var (
	fieldID                 = field("id", "$.id")
	fieldIDInBook           = field("id_in_book", "$.idInBook", "$.id_in_book")
	fieldBookID             = field("book_id", "$.bookId", "$.book_id")
	fieldChapterID          = field("chapter_id", "$.chapterId", "$.chapter_id")
	fieldArabic             = field("arabic", "$.arabic")
	fieldEnglishNarrator    = field("english_narrator", "$.english.narrator", "$.englishNarrator", "$.english_narrator")
	fieldEnglishText        = field("english_text", "$.english.text", "$.englishText", "$.english_text")
	fieldBookNameArabic     = field("book_name_arabic", "$.bookNameArabic", "$.book_name_arabic")
	fieldBookNameEnglish    = field("book_name_english", "$.bookNameEnglish", "$.book_name_english")
	fieldChapterNameArabic  = field("chapter_name_arabic", "$.chapterNameArabic", "$.chapter_name_arabic")
	fieldChapterNameEnglish = field("chapter_name_english", "$.chapterNameEnglish", "$.chapter_name_english")
)

// Validate maps one raw record onto a RawHadith. Every failure comes back as a
// validation-coded error naming the field; it never panics.
func Validate(raw any, sourceFile string) (h *domain.RawHadith, err error) {
	defer func() {
		if r := recover(); r != nil {
			h, err = nil, invalid("record", fmt.Sprintf("unexpected value: %v", r))
		}
	}()
	if _, ok := raw.(map[string]any); !ok {
		return nil, invalid("record", fmt.Sprintf("expected an object, got %T", raw))
	}

	id, err := requiredInt(raw, fieldID)
	if err != nil {
		return nil, err
	}
	bookID, err := requiredInt(raw, fieldBookID)
	if err != nil {
		return nil, err
	}
	idInBook := id
	if v, ok := fieldIDInBook.Resolve(raw); ok {
		if idInBook, ok = toInt64(v); !ok {
			return nil, invalid(fieldIDInBook.Name, fmt.Sprintf("not an integer: %v", v))
		}
	}
	var chapterID *int64
	if v, ok := fieldChapterID.Resolve(raw); ok {
		n, ok := toInt64(v)
		if !ok {
			return nil, invalid(fieldChapterID.Name, fmt.Sprintf("not an integer: %v", v))
		}
		chapterID = &n
	}

	arabicRaw, ok := fieldArabic.Resolve(raw)
	if !ok {
		return nil, invalid(fieldArabic.Name, "missing")
	}
	arabic, ok := arabicRaw.(string)
	if !ok {
		return nil, invalid(fieldArabic.Name, fmt.Sprintf("expected a string, got %T", arabicRaw))
	}
	if strings.TrimSpace(arabic) == "" {
		return nil, invalid(fieldArabic.Name, "empty")
	}

	h = &domain.RawHadith{
		ID:        id,
		IDInBook:  idInBook,
		BookID:    bookID,
		ChapterID: chapterID,
		Arabic:    arabic,
	}
	for _, opt := range []struct {
		f      Field
		dst    **string
		maxLen int
	}{
		{fieldEnglishNarrator, &h.EnglishNarrator, 0},
		{fieldEnglishText, &h.EnglishText, 0},
		{fieldBookNameArabic, &h.BookNameArabic, maxBookNameLen},
		{fieldBookNameEnglish, &h.BookNameEnglish, maxBookNameLen},
		{fieldChapterNameArabic, &h.ChapterNameArabic, 0},
		{fieldChapterNameEnglish, &h.ChapterNameEnglish, 0},
	} {
		s, err := optionalString(raw, opt.f, opt.maxLen)
		if err != nil {
			return nil, err
		}
		*opt.dst = s
	}
	h.SourceFile = pointers.NonBlank(tail(sourceFile, maxSourceFileLen))
	return h, nil
}

func requiredInt(raw any, f Field) (int64, error) {
	v, ok := f.Resolve(raw)
	if !ok {
		return 0, invalid(f.Name, "missing")
	}
	n, ok := toInt64(v)
	if !ok {
		return 0, invalid(f.Name, fmt.Sprintf("not an integer: %v", v))
	}
	return n, nil
}

// optionalString resolves a display field. Only absent or null values become
// nil; a present string, empty or not, is stored as given.
func optionalString(raw any, f Field, maxLen int) (*string, error) {
	v, ok := f.Resolve(raw)
	if !ok {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, invalid(f.Name, fmt.Sprintf("expected a string, got %T", v))
	}
	if maxLen > 0 && len([]rune(s)) > maxLen {
		return nil, invalid(f.Name, fmt.Sprintf("longer than %d characters", maxLen))
	}
	return &s, nil
}

// toInt64 accepts JSON integers, integral floats and numeric strings.
func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) || t != math.Trunc(t) || math.Abs(t) > 1<<53 {
			return 0, false
		}
		return int64(t), true
	case json.Number:
		n, err := t.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func tail(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

func invalid(fieldName, msg string) error {
	return ingesterr.NewError(ingesterr.CodeValidation, "hadith.validate", fieldName+": "+msg, nil)
}

// RecordID returns the record's raw id for log lines, or "unknown".
func RecordID(raw any) string {
	if v, ok := fieldID.Resolve(raw); ok {
		return fmt.Sprint(v)
	}
	return "unknown"
}
