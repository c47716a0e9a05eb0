package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/fangyikun/advertisement-opitimization/internal/rules"
	"github.com/fangyikun/advertisement-opitimization/internal/store"
)

// SQLite backs all three repositories with one database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path, applies
// pragmas and runs the schema migration.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma: %w", err)
		}
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func migrate(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS rules (
	id         TEXT PRIMARY KEY,
	store_id   TEXT NOT NULL DEFAULT '*',
	name       TEXT NOT NULL,
	priority   INTEGER NOT NULL DEFAULT 1,
	conditions TEXT NOT NULL,
	action     TEXT NOT NULL,
	seq        INTEGER
);
CREATE INDEX IF NOT EXISTS idx_rules_store ON rules(store_id);

CREATE TABLE IF NOT EXISTS stores (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	city          TEXT NOT NULL DEFAULT '',
	country_code  TEXT NOT NULL DEFAULT '',
	latitude      REAL NOT NULL DEFAULT 0,
	longitude     REAL NOT NULL DEFAULT 0,
	sign_id       TEXT,
	opening_hours TEXT,
	timezone      TEXT NOT NULL DEFAULT '',
	is_active     INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS vocabulary (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	type         TEXT NOT NULL,
	keyword      TEXT NOT NULL,
	mapped_value TEXT NOT NULL,
	UNIQUE(type, keyword)
);`
	_, err := db.Exec(schema)
	return err
}

func (s *SQLite) Close() error { return s.db.Close() }

func scanRule(row interface{ Scan(...any) error }) (rules.Rule, error) {
	var (
		r          rules.Rule
		conditions string
		action     string
	)
	if err := row.Scan(&r.ID, &r.StoreID, &r.Name, &r.Priority, &conditions, &action); err != nil {
		return rules.Rule{}, err
	}
	if err := json.Unmarshal([]byte(conditions), &r.Conditions); err != nil {
		return rules.Rule{}, fmt.Errorf("decode conditions for rule %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(action), &r.Action); err != nil {
		return rules.Rule{}, fmt.Errorf("decode action for rule %s: %w", r.ID, err)
	}
	return r, nil
}

const ruleColumns = "id, store_id, name, priority, conditions, action"

func (s *SQLite) queryRules(ctx context.Context, query string, args ...any) ([]rules.Rule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	var out []rules.Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListRules returns every rule in insertion order, which keeps
// priority ties stable across cycles.
func (s *SQLite) ListRules(ctx context.Context) ([]rules.Rule, error) {
	return s.queryRules(ctx, "SELECT "+ruleColumns+" FROM rules ORDER BY seq")
}

func (s *SQLite) RulesForScope(ctx context.Context, storeID string) ([]rules.Rule, error) {
	return s.queryRules(ctx,
		"SELECT "+ruleColumns+" FROM rules WHERE store_id IN ('', '*', ?) ORDER BY seq", storeID)
}

func encodeRule(r rules.Rule) (conditions, action string, err error) {
	condJSON, err := json.Marshal(r.Conditions)
	if err != nil {
		return "", "", fmt.Errorf("encode conditions: %w", err)
	}
	actJSON, err := json.Marshal(r.Action)
	if err != nil {
		return "", "", fmt.Errorf("encode action: %w", err)
	}
	return string(condJSON), string(actJSON), nil
}

func (s *SQLite) CreateRule(ctx context.Context, r rules.Rule) error {
	conditions, action, err := encodeRule(r)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rules (id, store_id, name, priority, conditions, action, seq)
		 VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM rules))`,
		r.ID, r.StoreID, r.Name, r.Priority, conditions, action)
	if err != nil {
		return fmt.Errorf("insert rule %s: %w", r.ID, err)
	}
	return nil
}

func (s *SQLite) UpdateRule(ctx context.Context, r rules.Rule) error {
	conditions, action, err := encodeRule(r)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE rules SET store_id = ?, name = ?, priority = ?, conditions = ?, action = ? WHERE id = ?`,
		r.StoreID, r.Name, r.Priority, conditions, action, r.ID)
	if err != nil {
		return fmt.Errorf("update rule %s: %w", r.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("rule %s not found", r.ID)
	}
	return nil
}

func (s *SQLite) DeleteRule(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM rules WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete rule %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("rule %s not found", id)
	}
	return nil
}

func (s *SQLite) ReplaceRules(ctx context.Context, rs []rules.Rule) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace rules: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM rules"); err != nil {
		return fmt.Errorf("clear rules: %w", err)
	}
	for i, r := range rs {
		conditions, action, err := encodeRule(r)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rules (id, store_id, name, priority, conditions, action, seq)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.StoreID, r.Name, r.Priority, conditions, action, i+1); err != nil {
			return fmt.Errorf("insert rule %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) ActiveStores(ctx context.Context) ([]store.Store, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, city, country_code, latitude, longitude,
		        COALESCE(sign_id, ''), COALESCE(opening_hours, ''), timezone, is_active
		 FROM stores WHERE is_active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query stores: %w", err)
	}
	defer rows.Close()

	var out []store.Store
	for rows.Next() {
		var (
			st    store.Store
			hours string
		)
		if err := rows.Scan(&st.ID, &st.Name, &st.City, &st.CountryCode,
			&st.Latitude, &st.Longitude, &st.SignID, &hours, &st.Timezone, &st.IsActive); err != nil {
			return nil, err
		}
		if hours != "" {
			if err := json.Unmarshal([]byte(hours), &st.OpeningHours); err != nil {
				return nil, fmt.Errorf("decode opening hours for store %s: %w", st.ID, err)
			}
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *SQLite) UpsertStore(ctx context.Context, st store.Store) error {
	hours := ""
	if len(st.OpeningHours) > 0 {
		encoded, err := json.Marshal(st.OpeningHours)
		if err != nil {
			return fmt.Errorf("encode opening hours: %w", err)
		}
		hours = string(encoded)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO stores (id, name, city, country_code, latitude, longitude, sign_id, opening_hours, timezone, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name, city = excluded.city, country_code = excluded.country_code,
		   latitude = excluded.latitude, longitude = excluded.longitude, sign_id = excluded.sign_id,
		   opening_hours = excluded.opening_hours, timezone = excluded.timezone, is_active = excluded.is_active`,
		st.ID, st.Name, st.City, st.CountryCode, st.Latitude, st.Longitude,
		st.SignID, hours, st.Timezone, st.IsActive)
	if err != nil {
		return fmt.Errorf("upsert store %s: %w", st.ID, err)
	}
	return nil
}

func (s *SQLite) CountStores(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM stores").Scan(&n); err != nil {
		return 0, fmt.Errorf("count stores: %w", err)
	}
	return n, nil
}

func (s *SQLite) LookupVocabulary(ctx context.Context, domain string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT keyword, mapped_value FROM vocabulary WHERE type = ?", domain)
	if err != nil {
		return nil, fmt.Errorf("query vocabulary: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var keyword, canonical string
		if err := rows.Scan(&keyword, &canonical); err != nil {
			return nil, err
		}
		out[keyword] = canonical
	}
	return out, rows.Err()
}

func (s *SQLite) PersistVocabulary(ctx context.Context, domain, keyword, canonical string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vocabulary (type, keyword, mapped_value) VALUES (?, ?, ?)
		 ON CONFLICT(type, keyword) DO UPDATE SET mapped_value = excluded.mapped_value`,
		domain, keyword, canonical)
	if err != nil {
		return fmt.Errorf("persist vocabulary %s/%s: %w", domain, keyword, err)
	}
	return nil
}
