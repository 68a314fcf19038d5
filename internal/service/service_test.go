package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/artcls/internal/db/memorystorage"
	"github.com/patric-chuzhbe/artcls/internal/hasher"
	"github.com/patric-chuzhbe/artcls/internal/mockstorage"
	"github.com/patric-chuzhbe/artcls/internal/models"
)

func newTestService(t *testing.T) (*Service, *memorystorage.MemoryStorage) {
	t.Helper()

	db, err := memorystorage.New()
	require.NoError(t, err)

	return New(db, db, hasher.New()), db
}

func validRegisterForm() models.RegisterForm {
	return models.RegisterForm{
		Name:     "Alice Liddell",
		Username: "alice",
		Email:    "alice@example.com",
		Password: "pw",
		Confirm:  "pw",
	}
}

func TestRegisterUserPersistsHashedPassword(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	fieldErrors, err := svc.RegisterUser(ctx, validRegisterForm())
	require.NoError(t, err)
	require.Empty(t, fieldErrors)

	usr, found, err := db.FindUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.True(t, found)

	assert.NotEqual(t, "pw", usr.Password)
	assert.False(t, strings.Contains(usr.Password, "pw"))
	assert.True(t, hasher.New().Verify("pw", usr.Password))
}

func TestRegisterUserValidation(t *testing.T) {
	testCases := []struct {
		name          string
		mutate        func(*models.RegisterForm)
		expectedField string
	}{
		{
			name:          "empty name",
			mutate:        func(f *models.RegisterForm) { f.Name = "" },
			expectedField: "Name",
		},
		{
			name:          "username too short",
			mutate:        func(f *models.RegisterForm) { f.Username = "abc" },
			expectedField: "Username",
		},
		{
			name:          "username too long",
			mutate:        func(f *models.RegisterForm) { f.Username = strings.Repeat("a", 26) },
			expectedField: "Username",
		},
		{
			name:          "email too short",
			mutate:        func(f *models.RegisterForm) { f.Email = "a@b.c" },
			expectedField: "Email",
		},
		{
			name:          "missing password",
			mutate:        func(f *models.RegisterForm) { f.Password = ""; f.Confirm = "" },
			expectedField: "Password",
		},
		{
			name:          "passwords do not match",
			mutate:        func(f *models.RegisterForm) { f.Confirm = "other" },
			expectedField: "Confirm",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			svc, db := newTestService(t)
			ctx := context.Background()

			form := validRegisterForm()
			testCase.mutate(&form)

			fieldErrors, err := svc.RegisterUser(ctx, form)
			require.NoError(t, err)
			assert.Contains(t, fieldErrors, testCase.expectedField)

			// validation failure must have no persistence side effect
			_, found, err := db.FindUserByUsername(ctx, form.Username)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestRegisterUserDuplicateUsername(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	fieldErrors, err := svc.RegisterUser(ctx, validRegisterForm())
	require.NoError(t, err)
	require.Empty(t, fieldErrors)

	second := validRegisterForm()
	second.Email = "alice2@example.com"
	fieldErrors, err = svc.RegisterUser(ctx, second)
	require.NoError(t, err)
	assert.Contains(t, fieldErrors, "Username")
}

func TestLoginUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, validRegisterForm())
	require.NoError(t, err)

	err = svc.LoginUser(ctx, models.LoginForm{Username: "alice", Password: "pw"})
	assert.NoError(t, err)

	err = svc.LoginUser(ctx, models.LoginForm{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	err = svc.LoginUser(ctx, models.LoginForm{Username: "nobody", Password: "pw"})
	assert.ErrorIs(t, err, models.ErrUnknownUser)
}

func TestCreateArticleBodyLengthBoundary(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	fieldErrors, err := svc.CreateArticle(
		ctx,
		models.ArticleForm{Title: "Hello", Body: strings.Repeat("x", 29)},
		"alice",
	)
	require.NoError(t, err)
	assert.Contains(t, fieldErrors, "Body")

	fieldErrors, err = svc.CreateArticle(
		ctx,
		models.ArticleForm{Title: "Hello", Body: strings.Repeat("x", 30)},
		"alice",
	)
	require.NoError(t, err)
	assert.Empty(t, fieldErrors)
}

func TestCreateArticleStampsAuthor(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	fieldErrors, err := svc.CreateArticle(
		ctx,
		models.ArticleForm{Title: "Hello", Body: strings.Repeat("x", 30)},
		"alice",
	)
	require.NoError(t, err)
	require.Empty(t, fieldErrors)

	all, err := svc.AllArticles(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "alice", all[0].Author)

	byAlice, err := svc.ArticlesByAuthor(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, byAlice, 1)

	byBob, err := svc.ArticlesByAuthor(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, byBob)
}

func TestUpdateArticleOwnership(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	id, err := db.CreateArticle(ctx, &models.Article{
		Title:  "Hello",
		Body:   strings.Repeat("x", 30),
		Author: "alice",
	})
	require.NoError(t, err)

	form := models.ArticleForm{Title: "Edited", Body: strings.Repeat("y", 30)}

	_, err = svc.UpdateArticle(ctx, id, form, "bob")
	assert.ErrorIs(t, err, models.ErrNotArticleAuthor)

	fieldErrors, err := svc.UpdateArticle(ctx, id, form, "alice")
	require.NoError(t, err)
	require.Empty(t, fieldErrors)

	article, err := svc.ArticleByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Edited", article.Title)
	assert.Equal(t, "alice", article.Author)
}

func TestDeleteArticle(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	id, err := db.CreateArticle(ctx, &models.Article{
		Title:  "Hello",
		Body:   strings.Repeat("x", 30),
		Author: "alice",
	})
	require.NoError(t, err)

	err = svc.DeleteArticle(ctx, id, "bob")
	assert.ErrorIs(t, err, models.ErrNotArticleAuthor)

	err = svc.DeleteArticle(ctx, id, "alice")
	require.NoError(t, err)

	_, err = svc.ArticleByID(ctx, id)
	assert.ErrorIs(t, err, models.ErrArticleNotFound)

	all, err := svc.AllArticles(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	err = svc.DeleteArticle(ctx, id, "alice")
	assert.ErrorIs(t, err, models.ErrArticleNotFound)
}

func TestArticleByIDNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ArticleByID(context.Background(), 42)
	assert.ErrorIs(t, err, models.ErrArticleNotFound)
}

func TestLoginUserPropagatesStorageFailure(t *testing.T) {
	db := &mockstorage.StorageMock{}
	db.On("FindUserByUsername", mock.Anything, "alice").
		Return(nil, false, errors.New("connection refused"))

	svc := New(db, db, hasher.New())

	err := svc.LoginUser(context.Background(), models.LoginForm{Username: "alice", Password: "pw"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrUnknownUser)
	db.AssertExpectations(t)
}
