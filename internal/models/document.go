// Package models defines the data structures shared by the Findly client: sessions, views,
// documents, search results, uploads and statistics.
package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// DocumentSummary is the read-only projection of a stored document. The search results view
// and the documents listing render it identically.
type DocumentSummary struct {
	Filename   string   `json:"filename"`
	Category   string   `json:"category,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	Department string   `json:"department,omitempty"`
	Year       Year     `json:"year,omitempty"`
	Uploader   string   `json:"uploader,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Timestamp  string   `json:"timestamp,omitempty"`
}

// CategoryOr returns the document category, or fallback when the service did not assign one.
func (d DocumentSummary) CategoryOr(fallback string) string {
	if strings.TrimSpace(d.Category) == "" {
		return fallback
	}
	return d.Category
}

// Year is a document year. The service emits a number, but model-extracted metadata can also
// arrive as a numeric string, null or free text such as "2022-23"; zero means unknown.
type Year int

// UnmarshalJSON accepts 2023 and "2023". Anything else decodes as unknown so one bad value
// does not fail the whole response.
func (y *Year) UnmarshalJSON(data []byte) error {
	*y = 0
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		data = []byte(strings.TrimSpace(s))
	}
	if n, err := strconv.Atoi(string(data)); err == nil {
		*y = Year(n)
	}
	return nil
}

// Known reports whether the year is set.
func (y Year) Known() bool {
	return y > 0
}

func (y Year) String() string {
	if !y.Known() {
		return ""
	}
	return strconv.Itoa(int(y))
}
