package domain

// CreateInput is the POST /hashes payload
type CreateInput struct {
	Hash string `json:"hash" validate:"required"`
}

// ListInput carries normalized paging parameters
type ListInput struct {
	Page  int
	Limit int
}

// ListResult is a page of records plus its pagination block
type ListResult struct {
	Hashes     []HashRecord `json:"hashes"`
	Pagination Pagination   `json:"pagination"`
}

// SearchResult is the GET /hashes/search payload
type SearchResult struct {
	Hashes     []HashRecord `json:"hashes"`
	SearchTerm string       `json:"searchTerm"`
	TotalFound int          `json:"totalFound"`
}

// CountResult is the GET /hashes/count payload
type CountResult struct {
	TotalHashes int    `json:"totalHashes"`
	Timestamp   string `json:"timestamp"`
}
