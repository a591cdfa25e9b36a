package repository

import (
	"context"
	"database/sql"
	"testing"

	"journalmind/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock, sqlDB
}

func TestUpsertAssignsIDAndReplaces(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	repo := NewEmbeddingRepository(db)

	mock.ExpectExec("INSERT INTO journal_embeddings").
		WillReturnResult(sqlmock.NewResult(0, 1))

	emb := &models.JournalEmbedding{
		JournalID: "j1",
		UserID:    "u1",
		Content:   "Title: Monday\n\nContent: a good day",
		Embedding: pgvector.NewVector([]float32{0.1, 0.2, 0.3}),
	}
	err := repo.Upsert(context.Background(), emb)

	require.NoError(t, err)
	require.NotEmpty(t, emb.ID, "KSUID assigned on insert")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertKeepsProvidedID(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	repo := NewEmbeddingRepository(db)

	mock.ExpectExec("INSERT INTO journal_embeddings").
		WillReturnResult(sqlmock.NewResult(0, 1))

	emb := &models.JournalEmbedding{
		ID:        "preassigned",
		JournalID: "j1",
		UserID:    "u1",
		Content:   "entry",
		Embedding: pgvector.NewVector([]float32{1}),
	}
	require.NoError(t, repo.Upsert(context.Background(), emb))
	require.Equal(t, "preassigned", emb.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertError(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	repo := NewEmbeddingRepository(db)

	mock.ExpectExec("INSERT INTO journal_embeddings").
		WillReturnError(sql.ErrConnDone)

	err := repo.Upsert(context.Background(), &models.JournalEmbedding{
		JournalID: "j1",
		UserID:    "u1",
		Content:   "entry",
		Embedding: pgvector.NewVector([]float32{1}),
	})

	require.Error(t, err)
	require.ErrorContains(t, err, "failed to upsert embedding")
}

func TestDeleteByJournalID(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	repo := NewEmbeddingRepository(db)

	mock.ExpectExec("DELETE FROM journal_embeddings").
		WithArgs("j1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteByJournalID(context.Background(), "j1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByJournalIDNoRows(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	repo := NewEmbeddingRepository(db)

	// Deleting a journal with no embedding affects zero rows and is still a
	// success.
	mock.ExpectExec("DELETE FROM journal_embeddings").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.DeleteByJournalID(context.Background(), "missing"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchScansMatches(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	repo := NewEmbeddingRepository(db)

	rows := sqlmock.NewRows([]string{"journal_id", "content", "similarity"}).
		AddRow("j1", "I went hiking and felt calm", 0.91).
		AddRow("j2", "Slept well last night", 0.54)

	mock.ExpectQuery("SELECT(.|\n)*FROM journal_embeddings(.|\n)*WHERE user_id =(.|\n)*ORDER BY embedding(.|\n)*LIMIT").
		WillReturnRows(rows)

	matches, err := repo.Search(context.Background(), "u1", []float32{1, 0, 0}, 5, 0.3)

	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, "j1", matches[0].JournalID)
	require.InDelta(t, 0.91, matches[0].Similarity, 1e-9)
	require.Equal(t, "Slept well last night", matches[1].Content)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchEmpty(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	repo := NewEmbeddingRepository(db)

	mock.ExpectQuery("SELECT(.|\n)*FROM journal_embeddings").
		WillReturnRows(sqlmock.NewRows([]string{"journal_id", "content", "similarity"}))

	matches, err := repo.Search(context.Background(), "u1", []float32{1}, 5, 0.3)

	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestSearchError(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	repo := NewEmbeddingRepository(db)

	mock.ExpectQuery("SELECT(.|\n)*FROM journal_embeddings").
		WillReturnError(sql.ErrConnDone)

	_, err := repo.Search(context.Background(), "u1", []float32{1}, 5, 0.3)

	require.Error(t, err)
	require.ErrorContains(t, err, "failed to search embeddings")
}
