package models

import (
	"encoding/json"
	"time"
)

// Author is either a reference to a stored user or a bare display name.
// Post authors reference the admin user; comment authors are free text.
type Author struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts both the object form and a plain name string.
func (a *Author) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		a.ID = ""
		a.Name = name
		return nil
	}
	type author Author
	var ref author
	if err := json.Unmarshal(data, &ref); err != nil {
		return err
	}
	*a = Author(ref)
	return nil
}

type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

type Post struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Content       string    `json:"content"`
	Excerpt       string    `json:"excerpt,omitempty"`
	FeaturedImage string    `json:"featuredImage,omitempty"`
	PDFURL        string    `json:"pdfUrl,omitempty"`
	PDFText       string    `json:"pdfText,omitempty"`
	Tags          []string  `json:"tags"`
	Author        Author    `json:"author"`
	Likes         int       `json:"likes"`
	Comments      []Comment `json:"comments"`
	IsPublished   bool      `json:"isPublished"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
