// Package service implements the application rules on top of the storage
// interface: registration with credential hashing, login verification, and
// the article CRUD operations with author stamping and ownership checks.
package service

import (
	"context"
	"errors"
	"fmt"

	validator "github.com/go-playground/validator/v10"

	"github.com/patric-chuzhbe/artcls/internal/models"
)

type userKeeper interface {
	CreateUser(ctx context.Context, usr *models.User) (int, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, bool, error)
}

type articleKeeper interface {
	CreateArticle(ctx context.Context, article *models.Article) (int, error)
	FindArticleByID(ctx context.Context, id int) (*models.Article, bool, error)
	FindAllArticles(ctx context.Context) ([]models.Article, error)
	FindArticlesByAuthor(ctx context.Context, author string) ([]models.Article, error)
	UpdateArticle(ctx context.Context, id int, title, body string) (bool, error)
	DeleteArticle(ctx context.Context, id int) (bool, error)
}

type credentialHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// FieldErrors maps a form field name to the message displayed next to it.
type FieldErrors map[string]string

var registerFormMessages = map[string]string{
	"Name":     "Name must be between 1 and 50 characters",
	"Username": "Username must be between 4 and 25 characters",
	"Email":    "Email must be between 6 and 50 characters",
	"Password": "Password is required",
	"Confirm":  "Passwords do not match",
}

var articleFormMessages = map[string]string{
	"Title": "Title must be between 1 and 200 characters",
	"Body":  "Body must be at least 30 characters",
}

// Service holds the business rules of the application.
type Service struct {
	users    userKeeper
	articles articleKeeper
	hasher   credentialHasher
	validate *validator.Validate
}

// New creates a Service over the given keepers and credential hasher.
func New(users userKeeper, articles articleKeeper, hasher credentialHasher) *Service {
	return &Service{
		users:    users,
		articles: articles,
		hasher:   hasher,
		validate: validator.New(),
	}
}

// RegisterUser validates the registration form, hashes the candidate
// password and persists the new account. A non-empty FieldErrors result
// means the form must be redisplayed; nothing was persisted in that case.
func (s *Service) RegisterUser(
	ctx context.Context,
	form models.RegisterForm,
) (FieldErrors, error) {
	fieldErrors, err := s.validateForm(form, registerFormMessages)
	if err != nil || fieldErrors != nil {
		return fieldErrors, err
	}

	hashed, err := s.hasher.Hash(form.Password)
	if err != nil {
		return nil, fmt.Errorf("error while hashing the password: %w", err)
	}

	_, err = s.users.CreateUser(
		ctx,
		&models.User{
			Name:     form.Name,
			Email:    form.Email,
			Username: form.Username,
			Password: hashed,
		},
	)
	if errors.Is(err, models.ErrUsernameTaken) {
		return FieldErrors{"Username": "This username is already taken"}, nil
	}
	if err != nil {
		return nil, err
	}

	return nil, nil
}

// LoginUser verifies the submitted credentials. It returns
// models.ErrUnknownUser when no account matches the username and
// models.ErrInvalidCredentials when the password does not verify.
// The hash comparison is delegated to the credential hasher and is
// constant-time with respect to the candidate.
func (s *Service) LoginUser(ctx context.Context, form models.LoginForm) error {
	usr, found, err := s.users.FindUserByUsername(ctx, form.Username)
	if err != nil {
		return err
	}
	if !found {
		return models.ErrUnknownUser
	}

	if !s.hasher.Verify(form.Password, usr.Password) {
		return models.ErrInvalidCredentials
	}

	return nil
}

// AllArticles returns every published article for the public list.
func (s *Service) AllArticles(ctx context.Context) ([]models.Article, error) {
	return s.articles.FindAllArticles(ctx)
}

// ArticleByID returns the article with the given id, or
// models.ErrArticleNotFound.
func (s *Service) ArticleByID(ctx context.Context, id int) (*models.Article, error) {
	article, found, err := s.articles.FindArticleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.ErrArticleNotFound
	}

	return article, nil
}

// ArticlesByAuthor returns the dashboard list for the given author.
func (s *Service) ArticlesByAuthor(ctx context.Context, author string) ([]models.Article, error) {
	return s.articles.FindArticlesByAuthor(ctx, author)
}

// CreateArticle validates the form and persists a new article authored by
// the given username. A non-empty FieldErrors result means the form must be
// redisplayed.
func (s *Service) CreateArticle(
	ctx context.Context,
	form models.ArticleForm,
	author string,
) (FieldErrors, error) {
	fieldErrors, err := s.validateForm(form, articleFormMessages)
	if err != nil || fieldErrors != nil {
		return fieldErrors, err
	}

	_, err = s.articles.CreateArticle(
		ctx,
		&models.Article{
			Title:  form.Title,
			Body:   form.Body,
			Author: author,
		},
	)
	if err != nil {
		return nil, err
	}

	return nil, nil
}

// ArticleForEdit returns the article to pre-populate the edit form with,
// enforcing that the editor is its author.
func (s *Service) ArticleForEdit(
	ctx context.Context,
	id int,
	editor string,
) (*models.Article, error) {
	if err := s.checkOwnership(ctx, id, editor); err != nil {
		return nil, err
	}

	article, found, err := s.articles.FindArticleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.ErrArticleNotFound
	}

	return article, nil
}

// UpdateArticle overwrites the title and body of the article after
// validating the form and checking that the editor is the article's author.
// The author field itself is never changed.
func (s *Service) UpdateArticle(
	ctx context.Context,
	id int,
	form models.ArticleForm,
	editor string,
) (FieldErrors, error) {
	if err := s.checkOwnership(ctx, id, editor); err != nil {
		return nil, err
	}

	fieldErrors, err := s.validateForm(form, articleFormMessages)
	if err != nil || fieldErrors != nil {
		return fieldErrors, err
	}

	found, err := s.articles.UpdateArticle(ctx, id, form.Title, form.Body)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.ErrArticleNotFound
	}

	return nil, nil
}

// DeleteArticle removes the article after checking that the requester is
// its author.
func (s *Service) DeleteArticle(ctx context.Context, id int, requester string) error {
	if err := s.checkOwnership(ctx, id, requester); err != nil {
		return err
	}

	found, err := s.articles.DeleteArticle(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return models.ErrArticleNotFound
	}

	return nil
}

func (s *Service) checkOwnership(ctx context.Context, id int, username string) error {
	article, found, err := s.articles.FindArticleByID(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return models.ErrArticleNotFound
	}
	if article.Author != username {
		return models.ErrNotArticleAuthor
	}

	return nil
}

func (s *Service) validateForm(
	form interface{},
	messages map[string]string,
) (FieldErrors, error) {
	err := s.validate.Struct(form)
	if err == nil {
		return nil, nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, err
	}

	fieldErrors := FieldErrors{}
	for _, fieldError := range validationErrors {
		message, ok := messages[fieldError.Field()]
		if !ok {
			message = "Invalid value"
		}
		fieldErrors[fieldError.Field()] = message
	}

	return fieldErrors, nil
}
