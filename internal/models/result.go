package models

// SearchResponse is the response of POST /chat-search. Results and QueryUnderstanding may be
// missing from the payload; consumers treat that as an empty sequence and nil respectively.
type SearchResponse struct {
	Results            []DocumentSummary   `json:"results"`
	Total              int                 `json:"total,omitempty"`
	QueryUnderstanding *QueryUnderstanding `json:"query_understanding,omitempty"`
	FiltersApplied     *SearchFilters      `json:"filters_applied,omitempty"`
}

// Normalize replaces a missing result list with an empty one and an empty understanding with nil.
func (r *SearchResponse) Normalize() {
	if r.Results == nil {
		r.Results = []DocumentSummary{}
	}
	if r.QueryUnderstanding.IsEmpty() {
		r.QueryUnderstanding = nil
	}
}

// Stats is the response of GET /stats.
type Stats struct {
	TotalDocuments        int            `json:"total_documents"`
	TotalUsers            int            `json:"total_users"`
	DocumentsByDepartment map[string]int `json:"documents_by_department"`
	DocumentsByType       map[string]int `json:"documents_by_type"`
	DocumentsByYear       map[string]int `json:"documents_by_year,omitempty"`
}

// FilterOptions is the response of GET /filters.
type FilterOptions struct {
	Departments   []string `json:"departments"`
	Years         []Year   `json:"years"`
	DocumentTypes []string `json:"document_types"`
}
