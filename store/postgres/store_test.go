package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/foomo/contentserver-slugs/docid"
	"github.com/foomo/contentserver-slugs/service/vo"
)

var italian = vo.SlugQuery{
	PublishedID: "page_1",
	Type:        "page",
	Slugs:       []string{"/recipes/italian", "/recipes/italian/", "recipes/italian", "recipes/italian/"},
}

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, zaptest.NewLogger(t)), mock
}

func expectSlugQuery(mock sqlmock.Sqlmock) *sqlmock.ExpectedQuery {
	return mock.ExpectQuery(`SELECT 1 FROM documents WHERE (.+) LIMIT 1`).
		WithArgs(
			"page",
			"/recipes/italian", "/recipes/italian/", "recipes/italian", "recipes/italian/",
			"page_1", "drafts.page_1",
			`^versions\.[^.]*\.page_1$`,
		)
}

func TestUniqueSlugQuery(t *testing.T) {
	store := New(nil, nil)
	stmt, args, err := store.uniqueSlugQuery(italian)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stmt, "SELECT 1 FROM documents WHERE "), stmt)
	assert.Contains(t, stmt, "type = $1")
	assert.Contains(t, stmt, "lower(slug) IN ($2,$3,$4,$5)")
	assert.Contains(t, stmt, "id NOT IN ($6,$7)")
	assert.Contains(t, stmt, "id !~ $8")
	assert.True(t, strings.HasSuffix(stmt, "LIMIT 1"), stmt)
	assert.Len(t, args, 8)
}

func TestMigrationsCreateQueriedTable(t *testing.T) {
	up, err := embedMigrations.ReadFile("migrations/00001_create_documents.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS "+Table+" (")

	stmt, _, err := New(nil, nil).uniqueSlugQuery(italian)
	require.NoError(t, err)
	assert.Contains(t, stmt, "FROM "+Table+" WHERE")
}

func TestVersionPattern(t *testing.T) {
	pattern := regexp.MustCompile(versionPattern("page_1"))

	for _, id := range []string{
		"versions.r1.page_1",
		"versions.summer-sale.page_1",
		"versions.r.foo.page_1",
		"versions..page_1",
		"versions.r1.page_12",
		"versions.r1.pageX1",
		"drafts.page_1",
		"page_1",
	} {
		assert.Equal(t, docid.IsVersion(id) && docid.VersionOf(id, "page_1"), pattern.MatchString(id), id)
	}
	assert.False(t, pattern.MatchString("versions.r.foo.page_1"))
	assert.True(t, pattern.MatchString("versions.r1.page_1"))
}

func TestIsSlugUnique_Unique(t *testing.T) {
	store, mock := newTestStore(t)
	expectSlugQuery(mock).WillReturnError(sql.ErrNoRows)

	unique, err := store.IsSlugUnique(context.Background(), italian)
	require.NoError(t, err)
	assert.True(t, unique)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsSlugUnique_Taken(t *testing.T) {
	store, mock := newTestStore(t)
	expectSlugQuery(mock).WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	unique, err := store.IsSlugUnique(context.Background(), italian)
	require.NoError(t, err)
	assert.False(t, unique)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsSlugUnique_NoRows(t *testing.T) {
	store, mock := newTestStore(t)
	expectSlugQuery(mock).WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	unique, err := store.IsSlugUnique(context.Background(), italian)
	require.NoError(t, err)
	assert.True(t, unique)
}

func TestIsSlugUnique_DBError(t *testing.T) {
	store, mock := newTestStore(t)
	expectSlugQuery(mock).WillReturnError(errors.New("connection reset"))

	_, err := store.IsSlugUnique(context.Background(), italian)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected DB error")
}

func TestMigrate_DBError(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	err = Migrate(db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration error")
}

func TestMigrate_NilDB(t *testing.T) {
	err := Migrate(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration error")
}
