package model

import (
	"time"
)

// Document represents an uploaded PDF and its overlay elements.
// Elements are replaced wholesale on each save; per-element edits
// happen only client-side before a save.
type Document struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	ObjectName string    `json:"object_name"`
	Owner      string    `json:"owner"`
	Elements   []Element `json:"elements"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
