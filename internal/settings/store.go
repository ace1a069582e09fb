package settings

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"netmeter/internal/model"
)

const dbFile = "netmeter.db"

const (
	keySelectedAdapter = "selected_adapter"
	keyAutoSelect      = "auto_select_adapter"
	keyHasPosition     = "has_position"
	keyPositionX       = "floating_x"
	keyPositionY       = "floating_y"
	keyFixPosition     = "fix_position"
	keyFontStyle       = "font_style"
	keyTextSize        = "text_size"
	keyTextColor       = "text_color"
)

// Store persists Settings as rows of a single key/value table.
type Store struct {
	db *sql.DB
}

func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite3", filepath.Join(dataDir, dbFile)+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open settings database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to settings database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate settings database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns persisted settings; keys that were never written keep their defaults.
func (s *Store) Load(ctx context.Context) (model.Settings, error) {
	out := model.DefaultSettings()
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return out, fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return out, fmt.Errorf("scan setting: %w", err)
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("iterate settings: %w", err)
	}

	if v, ok := values[keySelectedAdapter]; ok {
		out.SelectedAdapter = v
	}
	out.AutoSelectAdapter = parseBool(values, keyAutoSelect, out.AutoSelectAdapter)
	out.HasPosition = parseBool(values, keyHasPosition, false)
	out.PositionX = parseInt(values, keyPositionX, 0)
	out.PositionY = parseInt(values, keyPositionY, 0)
	out.FixedPosition = parseBool(values, keyFixPosition, false)
	if v := values[keyFontStyle]; v != "" {
		out.FontFamily = v
	}
	out.FontSize = parseInt(values, keyTextSize, out.FontSize)
	if v := values[keyTextColor]; v != "" {
		out.TextColor = v
	}
	return out, nil
}

// Save writes every key in one transaction.
func (s *Store) Save(ctx context.Context, in model.Settings) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin settings tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("prepare settings upsert: %w", err)
	}
	defer stmt.Close()

	for k, v := range map[string]string{
		keySelectedAdapter: in.SelectedAdapter,
		keyAutoSelect:      strconv.FormatBool(in.AutoSelectAdapter),
		keyHasPosition:     strconv.FormatBool(in.HasPosition),
		keyPositionX:       strconv.Itoa(in.PositionX),
		keyPositionY:       strconv.Itoa(in.PositionY),
		keyFixPosition:     strconv.FormatBool(in.FixedPosition),
		keyFontStyle:       in.FontFamily,
		keyTextSize:        strconv.Itoa(in.FontSize),
		keyTextColor:       in.TextColor,
	} {
		if _, err = stmt.ExecContext(ctx, k, v); err != nil {
			return fmt.Errorf("save setting %s: %w", k, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit settings: %w", err)
	}
	return nil
}

func parseBool(values map[string]string, key string, fallback bool) bool {
	v, ok := values[key]
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func parseInt(values map[string]string, key string, fallback int) int {
	v, ok := values[key]
	if !ok {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
