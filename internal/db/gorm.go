package db

import (
	"fmt"
	"log"

	"journalmind/internal/config"
	"journalmind/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormDB wraps the GORM database instance.
type GormDB struct {
	*gorm.DB
}

// NewGorm connects to Postgres, enables pgvector, and migrates the embedding
// schema.
func NewGorm(cfg *config.Config) (*GormDB, error) {
	dsn := cfg.DatabaseURL()

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("failed to enable pgvector extension: %w", err)
	}

	if err := db.AutoMigrate(&models.JournalEmbedding{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Vector index created manually: GORM has no vector index support.
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_journal_embeddings_vector
		ON journal_embeddings USING ivfflat (embedding vector_cosine_ops)
	`).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create vector index: %w", err)
	}

	log.Println("database connected and migrated")

	return &GormDB{db}, nil
}

// Close closes the underlying connection pool.
func (db *GormDB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
