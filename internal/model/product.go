package model

import "time"

// Product is a catalog entry for a brokered asset (vehicle, property,
// company, premium good). ImageKey references object storage; the public
// URL is resolved separately via a presigned GET.
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Description string    `json:"description,omitempty"`
	ImageKey    string    `json:"-"`
	ImageURL    string    `json:"image_url,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
