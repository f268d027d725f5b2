package domain

import "time"

// Filter narrows repository queries. Zero values mean "not filtered".
type Filter struct {
	Language Language
	Status   Status
	// Search matches case-insensitively against title and body text.
	Search string
	// OrderBy must be one of the timestamp columns; created_at otherwise.
	OrderBy    string
	Descending bool
	Limit      int
	Offset     int

	// RetryCountBelow selects records still eligible for automatic retry.
	RetryCountBelow int
	// RetryCountAtLeast selects records at or past the retry cap.
	RetryCountAtLeast int
	// UpdatedBefore selects records whose last update is older than the
	// given instant, used by the cleanup pass.
	UpdatedBefore time.Time
}

// OrderColumns are the fields a query may be ordered by.
var OrderColumns = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"published_at": true,
}

// Stats aggregates the stored corpus for the read-only surface.
type Stats struct {
	Total        int              `json:"total"`
	ByStatus     map[Status]int   `json:"by_status"`
	ByLanguage   map[Language]int `json:"by_language"`
	ByDomain     map[string]int   `json:"by_domain"`
	AvgWordCount float64          `json:"avg_word_count"`
}
