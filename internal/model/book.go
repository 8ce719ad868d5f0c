// Package model defines data structures used throughout the application.
package model

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation constants.
const (
	MaxTitleLength       = 255
	MaxAuthorLength      = 255
	MaxDescriptionLength = 1000
	MinPublicationYear   = 1450
	MaxPublicationYear   = 2050
)

// Field names as they appear in JSON bodies and validation error maps.
const (
	FieldTitle           = "title"
	FieldAuthor          = "author"
	FieldISBN            = "isbn"
	FieldPublicationYear = "publicationYear"
	FieldDescription     = "description"
)

// Validation messages.
const (
	MsgTitleEmpty          = "Title cannot be empty"
	MsgTitleTooLong        = "Title cannot exceed 255 characters"
	MsgAuthorEmpty         = "Author cannot be empty"
	MsgAuthorTooLong       = "Author name cannot exceed 255 characters"
	MsgISBNEmpty           = "ISBN cannot be empty"
	MsgISBNInvalid         = "Invalid ISBN format"
	MsgYearMissing         = "Publication year cannot be null"
	MsgYearTooEarly        = "Publication year must be after 1450"
	MsgYearTooLate         = "Publication year must be before 2050"
	MsgDescriptionTooLong  = "Description cannot exceed 1000 characters"
	MsgDuplicateISBN       = "A book with this ISBN already exists"
	notFoundMessagePattern = "Book with id %d not found"
)

// isbnPattern accepts ISBN-10 and ISBN-13 (978/979 prefix) without separators.
var isbnPattern = regexp.MustCompile(`^(978|979)?\d{9}(\d|X)$`)

// Book is a catalog record.
type Book struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	PublicationYear *int   `json:"publicationYear"`
	Description     string `json:"description"`
}

// Year returns the publication year, or 0 when it is unset.
func (b *Book) Year() int {
	if b.PublicationYear == nil {
		return 0
	}
	return *b.PublicationYear
}

// Validate checks every field independently and returns the violations keyed
// by field name. An empty result means the book is valid.
func (b *Book) Validate() ValidationErrors {
	c := NewChecker()

	c.Check(!isBlank(b.Title), FieldTitle, MsgTitleEmpty)
	c.Check(utf8.RuneCountInString(b.Title) <= MaxTitleLength, FieldTitle, MsgTitleTooLong)

	c.Check(!isBlank(b.Author), FieldAuthor, MsgAuthorEmpty)
	c.Check(utf8.RuneCountInString(b.Author) <= MaxAuthorLength, FieldAuthor, MsgAuthorTooLong)

	c.Check(!isBlank(b.ISBN), FieldISBN, MsgISBNEmpty)
	c.Check(ValidISBN(b.ISBN), FieldISBN, MsgISBNInvalid)

	if c.Check(b.PublicationYear != nil, FieldPublicationYear, MsgYearMissing) {
		c.Check(*b.PublicationYear >= MinPublicationYear, FieldPublicationYear, MsgYearTooEarly)
		c.Check(*b.PublicationYear <= MaxPublicationYear, FieldPublicationYear, MsgYearTooLate)
	}

	c.Check(utf8.RuneCountInString(b.Description) <= MaxDescriptionLength, FieldDescription, MsgDescriptionTooLong)

	return c.Errors()
}

// ValidISBN reports whether isbn matches the accepted ISBN-10/13 format.
func ValidISBN(isbn string) bool {
	return isbnPattern.MatchString(isbn)
}

// NotFoundMessage returns the user-facing message for a missing book.
func NotFoundMessage(id int64) string {
	return fmt.Sprintf(notFoundMessagePattern, id)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
