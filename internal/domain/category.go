package domain

import "time"

// Category groups articles.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Alias     string    `json:"alias"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
