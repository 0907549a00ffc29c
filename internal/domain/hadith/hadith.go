package hadith

import (
	"time"

	"gorm.io/datatypes"
)

// RawHadith is the immutable source record as loaded from the JSON corpus.
type RawHadith struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	IDInBook int64  `gorm:"column:id_in_book;not null;uniqueIndex:unique_hadith_in_book,priority:2" json:"id_in_book"`
	BookID   int64  `gorm:"column:book_id;not null;uniqueIndex:unique_hadith_in_book,priority:1;index:idx_raw_hadiths_book;index:idx_raw_hadiths_book_chapter,priority:1" json:"book_id"`
	// Not every source record carries a chapter.
	ChapterID *int64 `gorm:"column:chapter_id;index:idx_raw_hadiths_chapter;index:idx_raw_hadiths_book_chapter,priority:2" json:"chapter_id,omitempty"`

	Arabic          string  `gorm:"column:arabic;type:text;not null" json:"arabic"`
	EnglishNarrator *string `gorm:"column:english_narrator;type:text" json:"english_narrator,omitempty"`
	EnglishText     *string `gorm:"column:english_text;type:text" json:"english_text,omitempty"`

	BookNameArabic     *string `gorm:"column:book_name_arabic;size:255" json:"book_name_arabic,omitempty"`
	BookNameEnglish    *string `gorm:"column:book_name_english;size:255" json:"book_name_english,omitempty"`
	ChapterNameArabic  *string `gorm:"column:chapter_name_arabic;type:text" json:"chapter_name_arabic,omitempty"`
	ChapterNameEnglish *string `gorm:"column:chapter_name_english;type:text" json:"chapter_name_english,omitempty"`

	SourceFile *string    `gorm:"column:source_file;size:500" json:"source_file,omitempty"`
	LoadedAt   *time.Time `gorm:"column:loaded_at;default:CURRENT_TIMESTAMP" json:"loaded_at,omitempty"`
}

func (RawHadith) TableName() string { return "raw_hadiths" }

// PreprocessedHadith holds normalized text and the parsed isnad. It is written
// by the preprocessing stage, never by the loaders in this module.
type PreprocessedHadith struct {
	HadithID int64      `gorm:"column:hadith_id;primaryKey;autoIncrement:false" json:"hadith_id"`
	Hadith   *RawHadith `gorm:"constraint:OnDelete:CASCADE;foreignKey:HadithID;references:ID" json:"-"`

	ArabicNormalized  *string `gorm:"column:arabic_normalized;type:text" json:"arabic_normalized,omitempty"`
	EnglishNormalized *string `gorm:"column:english_normalized;type:text" json:"english_normalized,omitempty"`

	// Ordered from the Prophet backward.
	IsnadChain      datatypes.JSONSlice[string] `gorm:"column:isnad_chain" json:"isnad_chain,omitempty"`
	IsnadGeneration *int                        `gorm:"column:isnad_generation;index:idx_preprocessed_generation;check:chk_isnad_generation,isnad_generation IS NULL OR (isnad_generation >= 0 AND isnad_generation <= 10)" json:"isnad_generation,omitempty"`

	ExplicitTemporalReferences datatypes.JSONSlice[string] `gorm:"column:explicit_temporal_references" json:"explicit_temporal_references,omitempty"`
	ExplicitPersonReferences   datatypes.JSONSlice[string] `gorm:"column:explicit_person_references" json:"explicit_person_references,omitempty"`

	TextLengthArabic  *int `gorm:"column:text_length_arabic" json:"text_length_arabic,omitempty"`
	TextLengthEnglish *int `gorm:"column:text_length_english" json:"text_length_english,omitempty"`
	HasExplicitDate   bool `gorm:"column:has_explicit_date;not null;default:false" json:"has_explicit_date"`

	ProcessedAt          *time.Time `gorm:"column:processed_at;default:CURRENT_TIMESTAMP" json:"processed_at,omitempty"`
	PreprocessingVersion string     `gorm:"column:preprocessing_version;size:20;not null;default:'1.0'" json:"preprocessing_version"`
}

func (PreprocessedHadith) TableName() string { return "preprocessed_hadiths" }

// Summary is a lightweight preview used by verification samples.
type Summary struct {
	ID              int64
	BookID          int64
	IDInBook        int64
	BookNameEnglish *string
	Arabic          string
	EnglishText     *string
}

func (h *RawHadith) Summarize() Summary {
	return Summary{
		ID:              h.ID,
		BookID:          h.BookID,
		IDInBook:        h.IDInBook,
		BookNameEnglish: h.BookNameEnglish,
		Arabic:          h.Arabic,
		EnglishText:     h.EnglishText,
	}
}

// Preview truncates s to at most n runes, appending an ellipsis when cut.
func Preview(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
