package logbook

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/chrissnell/dc2uddf/internal/log"
	"github.com/chrissnell/dc2uddf/internal/types"
)

// DiveRecord is a row of the dives table
type DiveRecord struct {
	ID         uint      `gorm:"primaryKey"`
	ImportID   uuid.UUID `gorm:"type:uuid;not null;index"`
	StartedAt  *string   `gorm:"uniqueIndex"`
	Duration   uint      `gorm:"not null"`
	MaxDepth   float64   `gorm:"not null"`
	Profile    []byte    `gorm:"type:bytea;not null"`
	ImportedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for GORM
func (DiveRecord) TableName() string {
	return "dives"
}

// PostgresStore is a logbook kept in PostgreSQL
type PostgresStore struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// NewPostgresStore connects to the database at dsn and migrates the schema
func NewPostgresStore(ctx context.Context, dsn string, logger *zap.SugaredLogger) (*PostgresStore, error) {
	dbLogger := newGormLogger()

	logger.Info("connecting to PostgreSQL logbook...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, fmt.Errorf("unable to connect to PostgreSQL logbook: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&DiveRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate logbook schema: %w", err)
	}

	return &PostgresStore{db: db, logger: logger}, nil
}

func newGormLogger() logger.Interface {
	return logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// SaveCollection archives the dives of dc in a single transaction
func (p *PostgresStore) SaveCollection(ctx context.Context, dc *types.DiveCollection) (SaveResult, error) {
	result := SaveResult{ImportID: uuid.New()}
	importedAt := time.Now().UTC()

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, d := range dc.Dives {
			blob, err := encodeProfile(d)
			if err != nil {
				return fmt.Errorf("failed to encode dive %d: %w", i, err)
			}

			rec := DiveRecord{
				ImportID:   result.ImportID,
				StartedAt:  startTime(d),
				Duration:   d.Duration,
				MaxDepth:   d.MaxDepth,
				Profile:    blob,
				ImportedAt: importedAt,
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
			if res.Error != nil {
				return fmt.Errorf("failed to insert dive %d: %w", i, res.Error)
			}
			if res.RowsAffected == 0 {
				result.Skipped++
				continue
			}
			result.Saved++
		}
		return nil
	})
	if err != nil {
		return SaveResult{}, err
	}

	p.logger.Infow("archived dives",
		"import_id", result.ImportID,
		"saved", result.Saved,
		"skipped", result.Skipped)
	return result, nil
}

// LoadCollection returns every archived dive
func (p *PostgresStore) LoadCollection(ctx context.Context) (*types.DiveCollection, error) {
	var records []DiveRecord
	if err := p.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("error querying logbook: %w", err)
	}

	dc := types.NewDiveCollection()
	for _, rec := range records {
		d, err := decodeDive(rec.StartedAt, rec.Profile)
		if err != nil {
			return nil, err
		}
		dc.AddDive(d)
	}
	return dc, nil
}

// Close closes the underlying connection pool
func (p *PostgresStore) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
