package models

// Book is a record in a user's personal collection.
type Book struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Author  string `json:"author"`
	OwnerID int64  `json:"owner_id"`
}
