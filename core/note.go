package core

import "time"

// Note is a free-form text entry owned by a single account
type Note struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NoteUpdate carries the fields that may change on a note; nil means unchanged
type NoteUpdate struct {
	Title   *string
	Content *string
}
