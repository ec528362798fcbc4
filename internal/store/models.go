package store

import "time"

type Blog struct {
	ID        string
	Title     string
	Body      string
	Cohort    string // age-group tag, e.g. "6-8"
	AuthorID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Comment struct {
	ID        string
	BlogID    string
	AuthorID  string
	Body      string
	CreatedAt time.Time
}

type Notification struct {
	ID        string
	UserID    string
	Kind      string
	Message   string
	BlogID    string // empty when not blog-related
	Seen      bool
	CreatedAt time.Time
}
