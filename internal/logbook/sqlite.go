package logbook

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/chrissnell/dc2uddf/internal/types"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS dives (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	import_id   TEXT NOT NULL,
	started_at  TEXT UNIQUE,
	duration    INTEGER NOT NULL,
	max_depth   REAL NOT NULL,
	profile     BLOB NOT NULL,
	imported_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dives_import_id ON dives(import_id);
`

// SQLiteStore is a logbook kept in a single SQLite file
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	logger *zap.SugaredLogger
}

// NewSQLiteStore opens, and creates if needed, the logbook at dbPath
func NewSQLiteStore(ctx context.Context, dbPath string, logger *zap.SugaredLogger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite logbook: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite logbook: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create logbook schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
		logger: logger,
	}, nil
}

// SaveCollection archives the dives of dc in a single transaction
func (s *SQLiteStore) SaveCollection(ctx context.Context, dc *types.DiveCollection) (SaveResult, error) {
	result := SaveResult{ImportID: uuid.New()}
	importedAt := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SaveResult{}, fmt.Errorf("failed to begin logbook transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO dives (import_id, started_at, duration, max_depth, profile, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(started_at) DO NOTHING
	`)
	if err != nil {
		return SaveResult{}, fmt.Errorf("failed to prepare dive insert: %w", err)
	}
	defer stmt.Close()

	for i, d := range dc.Dives {
		blob, err := encodeProfile(d)
		if err != nil {
			return SaveResult{}, fmt.Errorf("failed to encode dive %d: %w", i, err)
		}

		res, err := stmt.ExecContext(ctx, result.ImportID.String(), startTime(d), d.Duration, d.MaxDepth, blob, importedAt)
		if err != nil {
			return SaveResult{}, fmt.Errorf("failed to insert dive %d: %w", i, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return SaveResult{}, fmt.Errorf("failed to insert dive %d: %w", i, err)
		}
		if n == 0 {
			result.Skipped++
			s.logger.Debugw("dive already in logbook", "started_at", *startTime(d))
			continue
		}
		result.Saved++
	}

	if err := tx.Commit(); err != nil {
		return SaveResult{}, fmt.Errorf("failed to commit logbook transaction: %w", err)
	}

	s.logger.Infow("archived dives",
		"logbook", s.dbPath,
		"import_id", result.ImportID,
		"saved", result.Saved,
		"skipped", result.Skipped)
	return result, nil
}

// LoadCollection returns every archived dive
func (s *SQLiteStore) LoadCollection(ctx context.Context) (*types.DiveCollection, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT started_at, profile FROM dives ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query dives: %w", err)
	}
	defer rows.Close()

	dc := types.NewDiveCollection()
	for rows.Next() {
		var (
			startedAt sql.NullString
			blob      []byte
		)
		if err := rows.Scan(&startedAt, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan dive row: %w", err)
		}

		var start *string
		if startedAt.Valid {
			start = &startedAt.String
		}
		d, err := decodeDive(start, blob)
		if err != nil {
			return nil, err
		}
		dc.AddDive(d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dives: %w", err)
	}

	return dc, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
