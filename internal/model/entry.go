package model

import "time"

const (
	EntryTypeWord     = "word"
	EntryTypeSentence = "sentence"
)

type Entry struct {
	ID         string    `json:"id"`
	Entry      string    `json:"entry"`
	Type       string    `json:"type"`
	Categories []string  `json:"categories"`
	Variation  []string  `json:"variation"`
	Author     string    `json:"author"`
	AuthorID   string    `json:"authorId"`
	Timestamp  time.Time `json:"timestamp"`
}

type FeedItem struct {
	Entry
	AuthorAvatar string `json:"authorAvatar,omitempty"`
}

type FeedPage struct {
	Items []FeedItem `json:"items"`
	Meta  Meta       `json:"-"`
}
