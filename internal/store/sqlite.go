package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "taframe/internal/errors"
	"taframe/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store, creating the
// parent directory and schema as needed.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Candles table for historical OHLCV data
	CREATE TABLE IF NOT EXISTS candles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, timeframe, timestamp)
	);

	-- Computed indicator values; NULL value means missing
	CREATE TABLE IF NOT EXISTS indicator_values (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		column_name TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		value REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, timeframe, column_name, timestamp)
	);

	CREATE INDEX IF NOT EXISTS idx_candles_symbol_timeframe ON candles(symbol, timeframe);
	CREATE INDEX IF NOT EXISTS idx_candles_timestamp ON candles(timestamp);
	CREATE INDEX IF NOT EXISTS idx_indicator_values_lookup ON indicator_values(symbol, timeframe, column_name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveCandles saves candles to the database, replacing rows that share
// a symbol, timeframe and timestamp.
func (s *SQLiteStore) SaveCandles(ctx context.Context, symbol, timeframe string, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO candles (symbol, timeframe, timestamp, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range candles {
		_, err := stmt.ExecContext(ctx, symbol, timeframe, c.Timestamp, c.Open, c.High, c.Low, c.Close, c.Volume)
		if err != nil {
			return fmt.Errorf("failed to insert candle: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetCandles retrieves candles ordered by timestamp. An empty result
// is reported as a DataError wrapping ErrNoData.
func (s *SQLiteStore) GetCandles(ctx context.Context, symbol, timeframe string, from, to time.Time) ([]models.Candle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, open, high, low, close, volume
		FROM candles
		WHERE symbol = ? AND timeframe = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`, symbol, timeframe, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query candles: %w", err)
	}
	defer rows.Close()

	var candles []models.Candle
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan candle: %w", err)
		}
		candles = append(candles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candles: %w", err)
	}

	if len(candles) == 0 {
		return nil, apperrors.NewDataError("sqlite", symbol, "no candles in range", apperrors.ErrNoData)
	}
	return candles, nil
}

// ListSymbols returns a summary row per stored symbol and timeframe.
func (s *SQLiteStore) ListSymbols(ctx context.Context) ([]SymbolInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, timeframe, COUNT(*), MIN(timestamp), MAX(timestamp)
		FROM candles
		GROUP BY symbol, timeframe
		ORDER BY symbol, timeframe
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()

	var infos []SymbolInfo
	for rows.Next() {
		var info SymbolInfo
		if err := rows.Scan(&info.Symbol, &info.Timeframe, &info.Rows, &info.From, &info.To); err != nil {
			return nil, fmt.Errorf("failed to scan symbol info: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating symbols: %w", err)
	}
	return infos, nil
}

// SaveIndicatorColumns stores computed indicator series aligned to the
// given timestamps. Missing values are stored as NULL.
func (s *SQLiteStore) SaveIndicatorColumns(ctx context.Context, symbol, timeframe string, index []time.Time, columns map[string][]float64) error {
	for name, series := range columns {
		if len(series) != len(index) {
			return apperrors.NewDataError("sqlite", symbol,
				fmt.Sprintf("column %q has %d rows, index has %d", name, len(series), len(index)), nil)
		}
	}
	if len(columns) == 0 || len(index) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO indicator_values (symbol, timeframe, column_name, timestamp, value)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for name, series := range columns {
		for i, v := range series {
			var value interface{}
			if !math.IsNaN(v) {
				value = v
			}
			if _, err := stmt.ExecContext(ctx, symbol, timeframe, name, index[i], value); err != nil {
				return fmt.Errorf("failed to insert indicator value: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetIndicatorColumns loads stored indicator series re-aligned to the
// given timestamps. Timestamps without a stored value, and NULL values,
// come back as NaN. Columns with no row in range are absent entirely.
func (s *SQLiteStore) GetIndicatorColumns(ctx context.Context, symbol, timeframe string, index []time.Time) (map[string][]float64, error) {
	if len(index) == 0 {
		return map[string][]float64{}, nil
	}
	position := make(map[int64]int, len(index))
	for i, t := range index {
		position[t.UnixNano()] = i
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT column_name, timestamp, value
		FROM indicator_values
		WHERE symbol = ? AND timeframe = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY column_name, timestamp ASC
	`, symbol, timeframe, index[0], index[len(index)-1])
	if err != nil {
		return nil, fmt.Errorf("failed to query indicator values: %w", err)
	}
	defer rows.Close()

	columns := make(map[string][]float64)
	for rows.Next() {
		var (
			name  string
			ts    time.Time
			value sql.NullFloat64
		)
		if err := rows.Scan(&name, &ts, &value); err != nil {
			return nil, fmt.Errorf("failed to scan indicator value: %w", err)
		}
		i, ok := position[ts.UnixNano()]
		if !ok {
			continue
		}
		series, ok := columns[name]
		if !ok {
			series = make([]float64, len(index))
			for j := range series {
				series[j] = math.NaN()
			}
			columns[name] = series
		}
		if value.Valid {
			series[i] = value.Float64
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating indicator values: %w", err)
	}
	return columns, nil
}
