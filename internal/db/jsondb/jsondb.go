// Package jsondb provides a JSON-file-backed implementation of the storage
// interface. The whole dataset lives in memory and is flushed to the file
// on Close. It backs both the file storage mode and, via embedding, the
// pure in-memory mode.
package jsondb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/artcls/internal/models"
)

// JSONDB keeps users and articles in an in-memory cache persisted as a
// single JSON document.
type JSONDB struct {
	fileName string
	mu       sync.RWMutex
	Cache    CacheStruct
}

// CacheStruct is the serialized shape of the database file.
type CacheStruct struct {
	Users         []*models.User
	Articles      []*models.Article
	NextUserID    int
	NextArticleID int
}

// NewCache returns an empty cache with the id counters initialized.
func NewCache() CacheStruct {
	return CacheStruct{
		Users:         []*models.User{},
		Articles:      []*models.Article{},
		NextUserID:    1,
		NextArticleID: 1,
	}
}

func initDBFile(fileName string) error {
	dbFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(dbFile)
	encoder.SetIndent("", "\t")
	if err := encoder.Encode(NewCache()); err != nil {
		return err
	}
	return dbFile.Close()
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %s", err)
	}

	file, err2 := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err2 != nil {
		return fmt.Errorf("error opening file: %s", err2)
	}
	defer file.Close()

	_, err = file.Write(jsonData)
	if err != nil {
		return fmt.Errorf("error writing to file: %s", err)
	}

	return nil
}

func parseJSONFile(fileName string, cache *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	err = decoder.Decode(cache)
	if err != nil {
		return err
	}

	return nil
}

// New opens (or creates) the database file and loads it into memory.
func New(fileName string) (*JSONDB, error) {
	db := JSONDB{
		fileName: fileName,
		Cache:    CacheStruct{},
	}

	err := parseJSONFile(db.fileName, &db.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		err := initDBFile(fileName)
		if err != nil {
			return nil, err
		}
		err = parseJSONFile(db.fileName, &db.Cache)
		if err != nil {
			return nil, err
		}
	}

	if db.Cache.NextUserID == 0 {
		db.Cache.NextUserID = 1
	}
	if db.Cache.NextArticleID == 0 {
		db.Cache.NextArticleID = 1
	}

	return &db, nil
}

// CreateUser appends a new user, assigning the next id. It returns
// models.ErrUsernameTaken when the username already exists.
func (db *JSONDB) CreateUser(ctx context.Context, usr *models.User) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	taken := funk.Contains(db.Cache.Users, func(existing *models.User) bool {
		return existing.Username == usr.Username
	})
	if taken {
		return 0, models.ErrUsernameTaken
	}

	stored := *usr
	stored.ID = db.Cache.NextUserID
	db.Cache.NextUserID++
	db.Cache.Users = append(db.Cache.Users, &stored)

	return stored.ID, nil
}

// FindUserByUsername returns the first user with the exact username.
func (db *JSONDB) FindUserByUsername(
	ctx context.Context,
	username string,
) (*models.User, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, usr := range db.Cache.Users {
		if usr.Username == username {
			found := *usr
			return &found, true, nil
		}
	}

	return nil, false, nil
}

// CreateArticle appends a new article, assigning the next id and stamping
// the creation time when the caller left it zero.
func (db *JSONDB) CreateArticle(ctx context.Context, article *models.Article) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	stored := *article
	stored.ID = db.Cache.NextArticleID
	db.Cache.NextArticleID++
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	db.Cache.Articles = append(db.Cache.Articles, &stored)

	return stored.ID, nil
}

// FindArticleByID returns the article with the given id, if any.
func (db *JSONDB) FindArticleByID(ctx context.Context, id int) (*models.Article, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, article := range db.Cache.Articles {
		if article.ID == id {
			found := *article
			return &found, true, nil
		}
	}

	return nil, false, nil
}

// FindAllArticles returns every article, newest first.
func (db *JSONDB) FindAllArticles(ctx context.Context) ([]models.Article, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := make([]models.Article, 0, len(db.Cache.Articles))
	for i := len(db.Cache.Articles) - 1; i >= 0; i-- {
		result = append(result, *db.Cache.Articles[i])
	}

	return result, nil
}

// FindArticlesByAuthor returns the author's articles, newest first.
func (db *JSONDB) FindArticlesByAuthor(
	ctx context.Context,
	author string,
) ([]models.Article, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	byAuthor := funk.Filter(db.Cache.Articles, func(article *models.Article) bool {
		return article.Author == author
	}).([]*models.Article)

	result := make([]models.Article, 0, len(byAuthor))
	for i := len(byAuthor) - 1; i >= 0; i-- {
		result = append(result, *byAuthor[i])
	}

	return result, nil
}

// UpdateArticle overwrites the title and body of the article with the given
// id, leaving the author untouched. It reports whether the article existed.
func (db *JSONDB) UpdateArticle(ctx context.Context, id int, title, body string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, article := range db.Cache.Articles {
		if article.ID == id {
			article.Title = title
			article.Body = body
			return true, nil
		}
	}

	return false, nil
}

// DeleteArticle removes the article with the given id and reports whether
// it existed.
func (db *JSONDB) DeleteArticle(ctx context.Context, id int) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, article := range db.Cache.Articles {
		if article.ID == id {
			db.Cache.Articles = append(db.Cache.Articles[:i], db.Cache.Articles[i+1:]...)
			return true, nil
		}
	}

	return false, nil
}

// Ping always succeeds for the file backend.
func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

// Close flushes the cache to the database file.
func (db *JSONDB) Close() error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return writeToJSONFile(db.fileName, &db.Cache)
}
