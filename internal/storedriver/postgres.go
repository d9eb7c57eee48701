package storedriver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/google/uuid"
	pgvec "github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/thebtf/auto-memory-bridge/pkg/models"
)

// entryRow is the GORM model backing a Store entry. Embedding is
// carried as a pgvector column so a future embedding writer can
// populate semantic search without a schema change; the bridge itself
// never reads or writes it.
type entryRow struct {
	UpdatedAt  time.Time    `gorm:"index"`
	ID         string       `gorm:"primaryKey"`
	Namespace  string       `gorm:"index:idx_entry_namespace_key,unique"`
	Key        string       `gorm:"index:idx_entry_namespace_key,unique"`
	Content    string
	Tags       string // comma-joined; GORM has no native []string for postgres text[] without a custom type
	Metadata   []byte // JSON-encoded map[string]any
	Embedding  pgvec.Vector `gorm:"type:vector(384)"`
	Confidence float64
}

func (entryRow) TableName() string { return "bridge_entries" }

// PostgresConfig configures the GORM/PostgreSQL-backed reference
// Store.
type PostgresConfig struct {
	DSN      string
	MaxConns int
	LogLevel logger.LogLevel
}

// PostgresStore is the reference Store implementation, backed by
// PostgreSQL via GORM/pgx.
type PostgresStore struct {
	db     *gorm.DB
	sqlDB  *sql.DB
	logger zerolog.Logger
}

// NewPostgresStore opens a connection, configures the pool, and runs
// migrations.
func NewPostgresStore(cfg PostgresConfig, log zerolog.Logger) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger:      logger.Default.LogMode(cfg.LogLevel),
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("storedriver: open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("storedriver: get sql.DB: %w", err)
	}

	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 10
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns / 2)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("storedriver: ping postgres: %w", err)
	}

	store := &PostgresStore{db: db, sqlDB: sqlDB, logger: log.With().Str("component", "storedriver").Logger()}

	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("storedriver: migrate: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) migrate() error {
	if err := s.db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("enable pgvector extension: %w", err)
	}

	m := gormigrate.New(s.db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "001_bridge_entries",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&entryRow{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("bridge_entries")
			},
		},
	})

	return m.Migrate()
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.sqlDB.Close()
}

func toRow(namespace string, e models.StoreEntry) (entryRow, error) {
	id := e.ID
	if id == "" {
		id = uuid.NewString()
	}
	metaJSON, err := marshalMetadata(e.Metadata)
	if err != nil {
		return entryRow{}, err
	}
	return entryRow{
		ID:         id,
		Namespace:  namespace,
		Key:        e.Key,
		Content:    e.Content,
		Tags:       joinTags(e.Tags),
		Metadata:   metaJSON,
		Confidence: e.MetadataFloat("confidence"),
		UpdatedAt:  e.UpdatedAt,
	}, nil
}

func fromRow(r entryRow) models.StoreEntry {
	meta := unmarshalMetadata(r.Metadata)
	return models.StoreEntry{
		ID:        r.ID,
		Key:       r.Key,
		Content:   r.Content,
		Namespace: r.Namespace,
		Tags:      splitTags(r.Tags),
		Metadata:  meta,
		UpdatedAt: r.UpdatedAt,
	}
}

// Store implements Store.
func (s *PostgresStore) Store(ctx context.Context, namespace string, entry models.StoreEntry) (string, error) {
	row, err := toRow(namespace, entry)
	if err != nil {
		return "", err
	}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "namespace"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"content", "tags", "metadata", "confidence", "updated_at"}),
		}).
		Create(&row).Error; err != nil {
		return "", fmt.Errorf("storedriver: store entry: %w", err)
	}
	return row.ID, nil
}

// BulkInsert implements Store.
func (s *PostgresStore) BulkInsert(ctx context.Context, namespace string, entries []models.StoreEntry) ([]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	rows := make([]entryRow, 0, len(entries))
	for _, e := range entries {
		row, err := toRow(namespace, e)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("storedriver: bulk insert: %w", err)
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// Query implements Store.
func (s *PostgresStore) Query(ctx context.Context, opts QueryOptions) ([]models.StoreEntry, error) {
	q := s.db.WithContext(ctx).Where("namespace = ?", opts.Namespace)
	if opts.MinConfidence > 0 {
		q = q.Where("confidence >= ?", opts.MinConfidence)
	}
	if !opts.Since.IsZero() {
		q = q.Where("updated_at >= ?", opts.Since)
	}
	q = q.Order("updated_at DESC")
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	var rows []entryRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("storedriver: query: %w", err)
	}

	out := make([]models.StoreEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromRow(r))
	}
	return out, nil
}

// Search implements Store with a simple substring match over content;
// real semantic search would compare against the Embedding column.
func (s *PostgresStore) Search(ctx context.Context, namespace, query string, limit int) ([]models.StoreEntry, error) {
	q := s.db.WithContext(ctx).
		Where("namespace = ? AND content ILIKE ?", namespace, "%"+query+"%").
		Order("updated_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []entryRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("storedriver: search: %w", err)
	}
	out := make([]models.StoreEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromRow(r))
	}
	return out, nil
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, namespace, key string) (models.StoreEntry, bool, error) {
	var row entryRow
	err := s.db.WithContext(ctx).Where("namespace = ? AND key = ?", namespace, key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.StoreEntry{}, false, nil
	}
	if err != nil {
		return models.StoreEntry{}, false, fmt.Errorf("storedriver: get: %w", err)
	}
	return fromRow(row), true, nil
}

// Delete implements Store.
func (s *PostgresStore) Delete(ctx context.Context, namespace, key string) error {
	return s.db.WithContext(ctx).
		Where("namespace = ? AND key = ?", namespace, key).
		Delete(&entryRow{}).Error
}

// Count implements Store.
func (s *PostgresStore) Count(ctx context.Context, namespace string) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&entryRow{}).Where("namespace = ?", namespace).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("storedriver: count: %w", err)
	}
	return int(count), nil
}

// ListNamespaces implements Store.
func (s *PostgresStore) ListNamespaces(ctx context.Context) ([]string, error) {
	var namespaces []string
	if err := s.db.WithContext(ctx).Model(&entryRow{}).Distinct().Pluck("namespace", &namespaces).Error; err != nil {
		return nil, fmt.Errorf("storedriver: list namespaces: %w", err)
	}
	return namespaces, nil
}

// HealthCheck implements Store.
func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	var dummy int
	return s.sqlDB.QueryRowContext(ctx, "SELECT 1").Scan(&dummy)
}
