package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Language is the detected language of an article body.
type Language string

const (
	LangEnglish   Language = "en"
	LangUkrainian Language = "uk"
	LangRussian   Language = "ru"
	LangGerman    Language = "de"
	LangFrench    Language = "fr"
	LangSpanish   Language = "es"
	LangItalian   Language = "it"
	LangUnknown   Language = "unknown"
)

var supportedLanguages = map[Language]bool{
	LangEnglish:   true,
	LangUkrainian: true,
	LangRussian:   true,
	LangGerman:    true,
	LangFrench:    true,
	LangSpanish:   true,
	LangItalian:   true,
	LangUnknown:   true,
}

// ParseLanguage maps an ISO 639-1 code onto the supported set; anything
// outside it collapses to unknown.
func ParseLanguage(code string) Language {
	lang := Language(strings.ToLower(strings.TrimSpace(code)))
	if supportedLanguages[lang] {
		return lang
	}
	return LangUnknown
}

// Status is a lifecycle state of an article record.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// transitions enumerates every legal status edge. The failed -> pending
// retry edge is the only backward one.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing},
	StatusProcessing: {StatusCompleted, StatusFailed},
	StatusFailed:     {StatusPending},
}

// CanTransition reports whether the edge from -> to is declared.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is one of the enumerated states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Article is the unit of work and the unit of persistence. URL is the
// global dedup key; all mutation goes through the lifecycle pipeline.
type Article struct {
	URL             string     `json:"url"`
	Title           string     `json:"title"`
	BodyText        string     `json:"body_text"`
	Summary         string     `json:"summary"`
	Language        Language   `json:"language"`
	Authors         []string   `json:"authors"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	MetaDescription string     `json:"meta_description"`
	TopImage        string     `json:"top_image,omitempty"`
	SourceDomain    string     `json:"source_domain"`
	Tags            string     `json:"tags"`
	WordCount       int        `json:"word_count"`
	Status          Status     `json:"status"`
	FailureReason   string     `json:"failure_reason,omitempty"`
	RetryCount      int        `json:"retry_count"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewArticle builds a pending record for a candidate URL.
func NewArticle(rawURL string) *Article {
	now := time.Now().UTC()
	return &Article{
		URL:          rawURL,
		Language:     LangUnknown,
		SourceDomain: DomainOf(rawURL),
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// DomainOf extracts the host part of a URL, empty when unparsable.
func DomainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// Transition moves the record to the given status, rejecting any edge not
// in the transition table. Moving off failed clears the failure reason;
// entering failed goes through Fail so a reason is always recorded.
func (a *Article) Transition(to Status) error {
	if !CanTransition(a.Status, to) {
		return fmt.Errorf("%w: %s -> %s for %s", ErrInvalidTransition, a.Status, to, a.URL)
	}
	if a.Status == StatusFailed && to == StatusPending {
		a.FailureReason = ""
	}
	a.Status = to
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// Fail transitions the record to failed with a human-readable reason.
func (a *Article) Fail(reason string) error {
	if err := a.Transition(StatusFailed); err != nil {
		return err
	}
	a.FailureReason = reason
	return nil
}

// ApplyExtraction copies a successful extraction result onto the record.
func (a *Article) ApplyExtraction(ext Extraction) {
	a.Title = ext.Title
	a.BodyText = ext.BodyText
	a.Authors = ext.Authors
	a.PublishedAt = ext.PublishedAt
	a.MetaDescription = ext.MetaDescription
	a.TopImage = ext.TopImage
	a.WordCount = ext.WordCount
}

// Extraction is the structured result of a content-extraction strategy.
// It is a plain value; persistence happens only in the lifecycle pipeline.
type Extraction struct {
	Title           string
	BodyText        string
	Authors         []string
	PublishedAt     *time.Time
	MetaDescription string
	TopImage        string
	WordCount       int
}
