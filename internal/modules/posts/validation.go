package posts

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	ErrInvalidTitle    = errors.New("title must be between 3 and 100 characters")
	ErrInvalidContent  = errors.New("content must be between 10 and 5000 characters")
	ErrInvalidCategory = errors.New("select a valid category")
	ErrInvalidComment  = errors.New("comment must be between 1 and 1000 characters")
)

const (
	minTitle   = 3
	maxTitle   = 100
	minContent = 10
	maxContent = 5000
	maxComment = 1000
)

// PostInput is the author-editable part of a post.
type PostInput struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Category    string `json:"category"`
	IsSensitive bool   `json:"is_sensitive"`
}

// Normalize trims the text fields in place.
func (in *PostInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Category = strings.TrimSpace(in.Category)
}

// Validate checks lengths. Category membership needs the database and is
// checked by the service.
func (in PostInput) Validate() error {
	if n := utf8.RuneCountInString(in.Title); n < minTitle || n > maxTitle {
		return ErrInvalidTitle
	}
	if n := utf8.RuneCountInString(in.Content); n < minContent || n > maxContent {
		return ErrInvalidContent
	}
	if in.Category == "" {
		return ErrInvalidCategory
	}
	return nil
}

func ValidateComment(content string) (string, error) {
	content = strings.TrimSpace(content)
	if n := utf8.RuneCountInString(content); n < 1 || n > maxComment {
		return "", ErrInvalidComment
	}
	return content, nil
}
