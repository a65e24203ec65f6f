package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"regexp"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/foomo/contentserver-slugs/docid"
	"github.com/foomo/contentserver-slugs/service/vo"
)

// Table is created by the embedded migrations.
const Table = "documents"

//go:embed migrations/*.sql
var embedMigrations embed.FS

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Open connects to postgres through the pgx stdlib driver.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("connected to database")
	return db, nil
}

// Migrate creates the documents table.
func Migrate(db *sql.DB) error {
	if db == nil {
		return errors.New("migration error: nil database")
	}
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	return nil
}

// Store keeps documents as rows of (id, type, slug). There is no draft
// overlay, every read is a raw read.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

func New(db *sql.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:     db,
		logger: logger,
	}
}

// versionPattern matches the release versions of publishedID, and only
// those: "versions.<release>." followed by the exact id.
func versionPattern(publishedID string) string {
	return `^` + regexp.QuoteMeta(docid.VersionPrefix) + `[^.]*\.` + regexp.QuoteMeta(publishedID) + `$`
}

func (s *Store) uniqueSlugQuery(query vo.SlugQuery) (string, []any, error) {
	return psql.
		Select("1").
		From(Table).
		Where(sq.Eq{"type": query.Type}).
		Where(sq.Eq{"lower(slug)": query.Slugs}).
		Where(sq.NotEq{"id": []string{query.PublishedID, docid.DraftsPrefix + query.PublishedID}}).
		Where(sq.Expr("id !~ ?", versionPattern(query.PublishedID))).
		Limit(1).
		ToSql()
}

func (s *Store) IsSlugUnique(ctx context.Context, query vo.SlugQuery) (bool, error) {
	stmt, args, err := s.uniqueSlugQuery(query)
	if err != nil {
		return false, fmt.Errorf("failed to build slug query: %w", err)
	}

	var found int
	err = s.db.QueryRowContext(ctx, stmt, args...).Scan(&found)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return true, nil
	case err != nil:
		s.logger.Error("slug query failed", zap.String("table", Table), zap.Error(err))
		return false, fmt.Errorf("unexpected DB error: %w", err)
	default:
		return false, nil
	}
}
