// Package postgresdb provides the PostgreSQL-based implementation of the
// storage interface for persisting users and articles. Schema migrations
// are applied with goose at startup.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/patric-chuzhbe/artcls/internal/models"
)

// uniqueViolation is the PostgreSQL error code for a violated unique
// constraint (pgerrcode.UniqueViolation).
const uniqueViolation = "23505"

// PostgresDB is a PostgreSQL-backed implementation of the article and user
// storage. All persistence operations go through a database/sql connection
// using the pgx driver.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type initOptions struct {
	DBPreReset bool
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset enables or disables resetting the database schema before migration.
// It can be used for test setups or development purposes.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New establishes a connection to the PostgreSQL database,
// runs schema migrations, and returns a configured PostgresDB instance.
// Optionally accepts initialization options, such as WithDBPreReset.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
	optionsProto ...InitOption,
) (*PostgresDB, error) {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if options.DBPreReset {
		if err := result.resetDB(ctx); err != nil {
			return nil, fmt.Errorf("error while `result.resetDB()` calling: %w", err)
		}
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("error while `goose.SetDialect()` calling: %w", err)
	}

	if err := goose.Up(result.database, migrationsDir); err != nil {
		return nil, fmt.Errorf("error while `goose.Up()` calling: %w", err)
	}

	return result, nil
}

// CreateUser inserts a new user record and returns the generated id.
// A violated username uniqueness constraint is reported as
// models.ErrUsernameTaken.
func (db *PostgresDB) CreateUser(ctx context.Context, usr *models.User) (int, error) {
	row := db.database.QueryRowContext(
		ctx,
		`
			INSERT INTO users (name, email, username, password)
				VALUES ($1, $2, $3, $4)
				RETURNING id
		`,
		usr.Name,
		usr.Email,
		usr.Username,
		usr.Password,
	)

	var id int
	err := row.Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, models.ErrUsernameTaken
		}
		return 0, err
	}

	return id, nil
}

// FindUserByUsername fetches the user with the exact username.
// The boolean result reports whether such a user exists.
func (db *PostgresDB) FindUserByUsername(
	ctx context.Context,
	username string,
) (*models.User, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`
			SELECT id, name, email, username, password
				FROM users
				WHERE username = $1
		`,
		username,
	)

	usr := &models.User{}
	err := row.Scan(&usr.ID, &usr.Name, &usr.Email, &usr.Username, &usr.Password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return usr, true, nil
}

// CreateArticle inserts a new article record and returns the generated id.
func (db *PostgresDB) CreateArticle(ctx context.Context, article *models.Article) (int, error) {
	row := db.database.QueryRowContext(
		ctx,
		`
			INSERT INTO articles (title, body, author)
				VALUES ($1, $2, $3)
				RETURNING id
		`,
		article.Title,
		article.Body,
		article.Author,
	)

	var id int
	err := row.Scan(&id)
	if err != nil {
		return 0, err
	}

	return id, nil
}

// FindArticleByID fetches the article with the given id.
// The boolean result reports whether such an article exists.
func (db *PostgresDB) FindArticleByID(
	ctx context.Context,
	id int,
) (*models.Article, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`
			SELECT id, title, body, author, created_at
				FROM articles
				WHERE id = $1
		`,
		id,
	)

	article := &models.Article{}
	err := row.Scan(&article.ID, &article.Title, &article.Body, &article.Author, &article.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return article, true, nil
}

// FindAllArticles returns every article, newest first.
func (db *PostgresDB) FindAllArticles(ctx context.Context) ([]models.Article, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`
			SELECT id, title, body, author, created_at
				FROM articles
				ORDER BY created_at DESC, id DESC
		`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanArticles(rows)
}

// FindArticlesByAuthor returns the author's articles, newest first.
func (db *PostgresDB) FindArticlesByAuthor(
	ctx context.Context,
	author string,
) ([]models.Article, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`
			SELECT id, title, body, author, created_at
				FROM articles
				WHERE author = $1
				ORDER BY created_at DESC, id DESC
		`,
		author,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanArticles(rows)
}

// UpdateArticle overwrites the title and body of the article with the given
// id. The author column is never touched. It reports whether a row was
// updated.
func (db *PostgresDB) UpdateArticle(
	ctx context.Context,
	id int,
	title,
	body string,
) (bool, error) {
	result, err := db.database.ExecContext(
		ctx,
		`
			UPDATE articles
				SET title = $1, body = $2
				WHERE id = $3
		`,
		title,
		body,
		id,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// DeleteArticle removes the article with the given id and reports whether
// a row was deleted.
func (db *PostgresDB) DeleteArticle(ctx context.Context, id int) (bool, error) {
	result, err := db.database.ExecContext(
		ctx,
		`DELETE FROM articles WHERE id = $1`,
		id,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// Ping verifies connectivity with the PostgreSQL database within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the database connection and releases any associated resources.
func (db *PostgresDB) Close() error {
	err := db.database.Close()
	if err != nil {
		return err
	}

	return nil
}

func scanArticles(rows *sql.Rows) ([]models.Article, error) {
	result := []models.Article{}
	for rows.Next() {
		var article models.Article
		err := rows.Scan(&article.ID, &article.Title, &article.Body, &article.Author, &article.CreatedAt)
		if err != nil {
			return nil, err
		}

		result = append(result, article)
	}

	err := rows.Err()
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (db *PostgresDB) resetDB(ctx context.Context) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			DO $$
			DECLARE
				r RECORD;
			BEGIN
				FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
					EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
				END LOOP;
			END $$;
		`,
	)
	if err != nil {
		return fmt.Errorf("error while `db.database.ExecContext()` calling: %w", err)
	}
	return nil
}
