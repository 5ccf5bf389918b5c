package models

import (
	"fmt"
	"strings"
)

// SearchFilters are optional explicit filters sent with a natural-language query.
// The service combines them with whatever it extracts from the query text.
type SearchFilters struct {
	Year         int    `json:"year,omitempty"`
	Department   string `json:"department,omitempty"`
	DocumentType string `json:"document_type,omitempty"`
}

// IsZero reports whether no filter is set.
func (f SearchFilters) IsZero() bool {
	return f.Year == 0 && f.Department == "" && f.DocumentType == ""
}

// SearchRequest is the body of POST /chat-search.
type SearchRequest struct {
	Query   string         `json:"query"`
	Filters *SearchFilters `json:"filters,omitempty"`
}

// Validate trims the query and drops empty filters.
// Returns an error if the query is empty or whitespace only.
func (q *SearchRequest) Validate() error {
	q.Query = strings.TrimSpace(q.Query)
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.Filters != nil {
		q.Filters.Department = strings.TrimSpace(q.Filters.Department)
		q.Filters.DocumentType = strings.TrimSpace(q.Filters.DocumentType)
		if q.Filters.IsZero() {
			q.Filters = nil
		}
	}
	return nil
}

// QueryUnderstanding holds the service's advisory interpretation of a query.
// It is display-only: all filtering happens server-side.
type QueryUnderstanding struct {
	ExtractedYear       Year   `json:"extracted_year,omitempty"`
	ExtractedDepartment string `json:"extracted_department,omitempty"`
	ExtractedType       string `json:"extracted_type,omitempty"`
}

// IsEmpty reports whether nothing was extracted.
func (u *QueryUnderstanding) IsEmpty() bool {
	return u == nil || (!u.ExtractedYear.Known() && u.ExtractedDepartment == "" && u.ExtractedType == "")
}
