package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/tutormatch/internal/adapters/repository"
	"github.com/okian/tutormatch/internal/domain/model"
)

var profileCols = []string{
	"id", "display_name", "bio", "experience", "skills_offered", "skills_wanted",
	"institution", "department", "city", "profile_public", "is_banned", "updated_at",
}

func setupMockDB(t *testing.T) (*repository.PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewPostgresStore(db, repository.WithQueryTimeout(time.Second)), mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	store, mock := setupMockDB(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS profiles").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Upsert(t *testing.T) {
	store, mock := setupMockDB(t)
	p := model.Profile{ID: "p1", DisplayName: "Ada", SkillsOffered: []string{"Go"}, Public: true}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO profiles")).
		WithArgs("p1", "Ada", "", "", sqlmock.AnyArg(), sqlmock.AnyArg(), "", "", "", true, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Upsert(context.Background(), p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertConstraintViolation(t *testing.T) {
	store, mock := setupMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO profiles")).
		WillReturnError(&pq.Error{Code: "23514", Message: "check violation"})

	err := store.Upsert(context.Background(), model.Profile{ID: "p1"})
	assert.True(t, errors.Is(err, repository.ErrInvalidProfile))
	assert.False(t, errors.Is(err, repository.ErrUnavailable))
}

func TestPostgresStore_Get(t *testing.T) {
	store, mock := setupMockDB(t)
	updated := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE id = $1")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(profileCols).
			AddRow("p1", "Ada", "bio", "exp", []byte("{Go,Rust}"), []byte("{}"), "METU", "CENG", "Ankara", true, false, updated))

	p, err := store.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.DisplayName)
	assert.Equal(t, []string{"Go", "Rust"}, p.SkillsOffered)
	assert.Equal(t, []string{}, p.SkillsWanted)
	assert.Equal(t, "Ankara", p.City)
	assert.True(t, p.Public)
	assert.Equal(t, updated, p.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetNotFound(t *testing.T) {
	store, mock := setupMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE id = $1")).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := store.Get(context.Background(), "ghost")
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestPostgresStore_GetUnavailable(t *testing.T) {
	store, mock := setupMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE id = $1")).
		WillReturnError(errors.New("connection refused"))

	_, err := store.Get(context.Background(), "p1")
	assert.True(t, errors.Is(err, repository.ErrUnavailable))
	assert.False(t, errors.Is(err, repository.ErrNotFound))
}

func TestPostgresStore_DiscoverablePool(t *testing.T) {
	store, mock := setupMockDB(t)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE profile_public AND NOT is_banned AND id <> $1 ORDER BY id")).
		WithArgs("me").
		WillReturnRows(sqlmock.NewRows(profileCols).
			AddRow("a", "", "", "", []byte("{Python}"), []byte("{Go}"), "", "", "", true, false, now).
			AddRow("b", "", "", "", []byte("{}"), []byte("{Python}"), "", "", "", true, false, now))

	pool, err := store.DiscoverablePool(context.Background(), "me")
	require.NoError(t, err)
	require.Len(t, pool, 2)
	assert.Equal(t, "a", pool[0].ID)
	assert.Equal(t, []string{"Python"}, pool[1].SkillsWanted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Count(t *testing.T) {
	store, mock := setupMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM profiles")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestPostgresStore_Save(t *testing.T) {
	store, mock := setupMockDB(t)
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM match_suggestions WHERE owner_id = $1")).
		WithArgs("me").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO match_suggestions")).
		WithArgs("me", 0, "a", 85.0, sqlmock.AnyArg(), at).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO match_suggestions")).
		WithArgs("me", 1, "b", 20.0, sqlmock.AnyArg(), at).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.Save(context.Background(), "me", []model.MatchSuggestion{
		{TargetID: "a", Score: 85, CommonTopics: []string{"Go"}, ComputedAt: at},
		{TargetID: "b", Score: 20, ComputedAt: at},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveRollsBack(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM match_suggestions")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO match_suggestions")).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.Save(context.Background(), "me", []model.MatchSuggestion{{TargetID: "a"}})
	assert.True(t, errors.Is(err, repository.ErrUnavailable))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_List(t *testing.T) {
	store, mock := setupMockDB(t)
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM match_suggestions WHERE owner_id = $1 ORDER BY position")).
		WithArgs("me").
		WillReturnRows(sqlmock.NewRows([]string{"target_id", "score", "common_topics", "computed_at"}).
			AddRow("a", 85.0, []byte("{Go,Rust}"), at))

	got, err := store.List(context.Background(), "me")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].TargetID)
	assert.Equal(t, 85.0, got[0].Score)
	assert.Equal(t, []string{"Go", "Rust"}, got[0].CommonTopics)
	assert.Equal(t, at, got[0].ComputedAt)
}
