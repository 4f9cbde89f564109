package domain

import "time"

type Book struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	IsBorrowed bool      `json:"is_borrowed"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type BookCreateRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}
