// Package models defines the entities stored by the application,
// the form payloads submitted by users, and the sentinel errors
// shared between the storage, service and router layers.
package models

import (
	"errors"
	"time"
)

// User is a registered account. Password always holds the bcrypt hash,
// never the plaintext candidate.
type User struct {
	ID       int
	Name     string
	Email    string
	Username string
	Password string
}

// Article is a titled, bodied content record. Author is the username of
// the account that created it; it is never changed by an edit.
type Article struct {
	ID        int
	Title     string
	Body      string
	Author    string
	CreatedAt time.Time
}

// RegisterForm carries the registration form fields.
// The validate tags mirror the form constraints surfaced to the user.
type RegisterForm struct {
	Name     string `validate:"min=1,max=50"`
	Username string `validate:"min=4,max=25"`
	Email    string `validate:"min=6,max=50"`
	Password string `validate:"required"`
	Confirm  string `validate:"eqfield=Password"`
}

// LoginForm carries the login form fields. Credentials are checked against
// storage, not declaratively, so there are no validate tags.
type LoginForm struct {
	Username string
	Password string
}

// ArticleForm carries the add/edit article form fields.
type ArticleForm struct {
	Title string `validate:"min=1,max=200"`
	Body  string `validate:"min=30"`
}

const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeFile
	StorageTypeMemory
)

// ErrUsernameTaken is returned by storage when an insert would violate the
// username uniqueness constraint.
var ErrUsernameTaken = errors.New("the username is already taken")

// ErrUnknownUser is returned by the service when no account matches the
// submitted username.
var ErrUnknownUser = errors.New("username not found")

// ErrInvalidCredentials is returned by the service when the account exists
// but the password does not verify against the stored hash.
var ErrInvalidCredentials = errors.New("invalid login")

// ErrArticleNotFound is returned when an article id matches no record.
var ErrArticleNotFound = errors.New("the article was not found")

// ErrNotArticleAuthor is returned when an authenticated user tries to edit
// or delete an article they did not create.
var ErrNotArticleAuthor = errors.New("the article belongs to another author")
