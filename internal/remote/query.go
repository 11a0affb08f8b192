package remote

// Sort directions and timestamp keys accepted by the query endpoint.
const (
	SortAscending  = "ascending"
	SortDescending = "descending"

	TimestampCreated    = "created_time"
	TimestampLastEdited = "last_edited_time"
)

// Sort orders query results by a property or a record timestamp.
type Sort struct {
	Property  string `json:"property,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Direction string `json:"direction"`
}

// QueryRequest is the body of a database query.
type QueryRequest struct {
	Filter      *Filter `json:"filter,omitempty"`
	Sorts       []Sort  `json:"sorts,omitempty"`
	StartCursor string  `json:"start_cursor,omitempty"`
	PageSize    int     `json:"page_size,omitempty"`
}

// QueryResponse is one page of query results.
type QueryResponse struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// UserListResponse is one page of the workspace user listing.
type UserListResponse struct {
	Results    []User `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor,omitempty"`
}
