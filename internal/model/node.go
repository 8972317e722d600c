package model

import "time"

// Node is an entry in the file repository hierarchy: a folder (container)
// or a file (leaf with an object-storage reference).
// This is a pure domain model with no database-specific dependencies or tags.
type Node struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	IsFolder bool    `json:"is_folder"`
	ParentID *string `json:"parent_id"` // nil = root level

	// File fields, zero-valued when IsFolder is true.
	FileURL  string `json:"file_url,omitempty"`
	FileType string `json:"file_type,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`

	// Optional association to a catalog product, informational only.
	ProductID    *string `json:"product_id,omitempty"`
	ProductTitle string  `json:"product_title,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
