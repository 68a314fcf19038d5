// Package storage declares the persistence interface implemented by the
// Postgres, file and in-memory backends.
package storage

import (
	"context"

	"github.com/patric-chuzhbe/artcls/internal/models"
)

// Storage is the full persistence surface used by the application.
// Lookup methods report absence through their boolean result; mutating
// methods on a single record report whether the record existed.
type Storage interface {
	CreateUser(ctx context.Context, usr *models.User) (int, error)

	FindUserByUsername(ctx context.Context, username string) (*models.User, bool, error)

	CreateArticle(ctx context.Context, article *models.Article) (int, error)

	FindArticleByID(ctx context.Context, id int) (*models.Article, bool, error)

	FindAllArticles(ctx context.Context) ([]models.Article, error)

	FindArticlesByAuthor(ctx context.Context, author string) ([]models.Article, error)

	UpdateArticle(ctx context.Context, id int, title, body string) (bool, error)

	DeleteArticle(ctx context.Context, id int) (bool, error)

	Ping(ctx context.Context) error

	Close() error
}
