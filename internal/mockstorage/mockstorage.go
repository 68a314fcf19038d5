// Package mockstorage provides a testify-based mock implementation
// of the storage interface. It is used for unit testing HTTP handlers and
// services by simulating storage behavior, including failures.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/artcls/internal/models"
)

// StorageMock is a testify mock that implements the full storage interface.
type StorageMock struct {
	mock.Mock
}

// CreateUser mocks inserting a user.
func (m *StorageMock) CreateUser(ctx context.Context, usr *models.User) (int, error) {
	args := m.Called(ctx, usr)
	return args.Int(0), args.Error(1)
}

// FindUserByUsername mocks the exact-username lookup.
func (m *StorageMock) FindUserByUsername(
	ctx context.Context,
	username string,
) (*models.User, bool, error) {
	args := m.Called(ctx, username)
	usr, _ := args.Get(0).(*models.User)
	return usr, args.Bool(1), args.Error(2)
}

// CreateArticle mocks inserting an article.
func (m *StorageMock) CreateArticle(ctx context.Context, article *models.Article) (int, error) {
	args := m.Called(ctx, article)
	return args.Int(0), args.Error(1)
}

// FindArticleByID mocks the lookup by id.
func (m *StorageMock) FindArticleByID(
	ctx context.Context,
	id int,
) (*models.Article, bool, error) {
	args := m.Called(ctx, id)
	article, _ := args.Get(0).(*models.Article)
	return article, args.Bool(1), args.Error(2)
}

// FindAllArticles mocks the public list.
func (m *StorageMock) FindAllArticles(ctx context.Context) ([]models.Article, error) {
	args := m.Called(ctx)
	articles, _ := args.Get(0).([]models.Article)
	return articles, args.Error(1)
}

// FindArticlesByAuthor mocks the per-author list.
func (m *StorageMock) FindArticlesByAuthor(
	ctx context.Context,
	author string,
) ([]models.Article, error) {
	args := m.Called(ctx, author)
	articles, _ := args.Get(0).([]models.Article)
	return articles, args.Error(1)
}

// UpdateArticle mocks the in-place title/body overwrite.
func (m *StorageMock) UpdateArticle(
	ctx context.Context,
	id int,
	title,
	body string,
) (bool, error) {
	args := m.Called(ctx, id, title, body)
	return args.Bool(0), args.Error(1)
}

// DeleteArticle mocks the deletion by id.
func (m *StorageMock) DeleteArticle(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// Ping mocks the connectivity check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks releasing the storage resources.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
