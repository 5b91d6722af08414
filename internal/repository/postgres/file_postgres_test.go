package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/math-u-t/litedrive/internal/model"
	"github.com/math-u-t/litedrive/internal/repository"
)

var columns = []string{"id", "owner_id", "file_name", "storage_path", "file_size", "mime_type", "url", "created_at"}

const testID = "3f6c1f0e-8a4b-4d0a-9d55-2f1b7b0f9a11"

func newRepo(t *testing.T) (*FilePostgres, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewFilePostgres(db), mock
}

func TestFilePostgres_Insert(t *testing.T) {
	repo, mock := newRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	rec := &model.FileRecord{
		OwnerID:     "user_1",
		FileName:    "test.txt",
		StoragePath: "user_1/1700000000000_test.txt",
		FileSize:    123,
		MimeType:    "text/plain",
		URL:         "http://store/object/public/litedrive/user_1/1700000000000_test.txt",
		CreatedAt:   now,
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO files").
			WithArgs(rec.OwnerID, rec.FileName, rec.StoragePath, rec.FileSize, rec.MimeType, rec.URL, rec.CreatedAt).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testID))

		id, err := repo.Insert(ctx, rec)

		assert.NoError(t, err)
		assert.Equal(t, testID, id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO files").
			WillReturnError(errors.New("duplicate key value violates unique constraint"))

		id, err := repo.Insert(ctx, rec)

		assert.Error(t, err)
		assert.Empty(t, id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFilePostgres_FindOne(t *testing.T) {
	repo, mock := newRepo(t)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(columns).
			AddRow(testID, "user_1", "file.txt", "user_1/1_file.txt", 100, "text/plain", "http://u", time.Now())

		mock.ExpectQuery("SELECT (.+) FROM files WHERE id = \\$1 AND owner_id = \\$2").
			WithArgs(testID, "user_1").
			WillReturnRows(rows)

		rec, err := repo.FindOne(ctx, testID, "user_1")

		require.NoError(t, err)
		assert.Equal(t, testID, rec.ID)
		assert.Equal(t, int64(100), rec.FileSize)
		assert.Equal(t, "user_1/1_file.txt", rec.StoragePath)
	})

	t.Run("other owner", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM files WHERE id").
			WithArgs(testID, "user_2").
			WillReturnError(sql.ErrNoRows)

		rec, err := repo.FindOne(ctx, testID, "user_2")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, rec)
	})

	t.Run("malformed id never reaches the database", func(t *testing.T) {
		rec, err := repo.FindOne(ctx, "not-a-uuid", "user_1")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, rec)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_DeleteOne(t *testing.T) {
	repo, mock := newRepo(t)
	ctx := context.Background()

	t.Run("deleted", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM files WHERE id = \\$1 AND owner_id = \\$2").
			WithArgs(testID, "user_1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		n, err := repo.DeleteOne(ctx, testID, "user_1")

		assert.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("already gone", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM files").
			WithArgs(testID, "user_1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		n, err := repo.DeleteOne(ctx, testID, "user_1")

		assert.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	t.Run("exec error", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM files").
			WillReturnError(errors.New("connection reset"))

		_, err := repo.DeleteOne(ctx, testID, "user_1")

		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_FindByOwner(t *testing.T) {
	repo, mock := newRepo(t)
	ctx := context.Background()

	t.Run("newest first", func(t *testing.T) {
		newer := time.Now()
		older := newer.Add(-time.Hour)
		rows := sqlmock.NewRows(columns).
			AddRow(testID, "user_1", "b.txt", "user_1/2_b.txt", 2, "text/plain", "http://b", newer).
			AddRow("6b0f7c3a-2f7e-4d19-8c2a-0b8b9a1e2c33", "user_1", "a.txt", "user_1/1_a.txt", 1, "text/plain", "http://a", older)

		mock.ExpectQuery("SELECT (.+) FROM files WHERE owner_id = \\$1 ORDER BY created_at DESC").
			WithArgs("user_1").
			WillReturnRows(rows)

		items, err := repo.FindByOwner(ctx, "user_1")

		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "b.txt", items[0].FileName)
		assert.Equal(t, "a.txt", items[1].FileName)
	})

	t.Run("no records is an empty slice", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM files WHERE owner_id").
			WithArgs("nobody").
			WillReturnRows(sqlmock.NewRows(columns))

		items, err := repo.FindByOwner(ctx, "nobody")

		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_Ping(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectPing().WillReturnError(errors.New("down"))
	assert.Error(t, repo.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
