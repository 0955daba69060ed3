package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	// Pure-Go SQLite driver, registered as "sqlite".
	_ "github.com/glebarez/go-sqlite"
	"gopkg.in/yaml.v3"
)

// DatabaseFile is the SQLite file name inside a store directory.
const DatabaseFile = "results.sqlite3"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS campaign
(
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	created_at TEXT,
	header     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS mode
(
	campaign_id  TEXT    NOT NULL,
	row_seq      INTEGER NOT NULL,
	config_index INTEGER NOT NULL,
	value        REAL    NOT NULL,
	wavenumber   REAL    NOT NULL,
	mode_pos     INTEGER NULL,
	mode_index   INTEGER NULL,
	center       REAL    NULL,
	linewidth    REAL    NULL,
	q            REAL    NULL,
	pump         INTEGER NULL,
	stokes       INTEGER NULL,
	amplitude    REAL    NULL,
	PRIMARY KEY (campaign_id, row_seq)
);
`

// SQLite keeps the snapshots of several campaigns in one database. Load
// returns the most recently saved one.
type SQLite struct {
	*sql.DB
	path string
}

// NewSQLite opens or creates the database inside dir.
func NewSQLite(dir string) (*SQLite, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	path := filepath.Join(dir, DatabaseFile)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLite{DB: db, path: path}, nil
}

// Path returns the database file.
func (s *SQLite) Path() string { return s.path }

// Save inserts the snapshot in one transaction. Saving a campaign ID twice
// replaces the earlier rows.
func (s *SQLite) Save(snap Snapshot) error {
	header := snap.Header
	header.Version = SnapshotVersion
	header.Count = len(snap.Results)
	if header.ID == "" {
		return errors.New("snapshot header has no campaign id")
	}
	headerData, err := yaml.Marshal(&header)
	if err != nil {
		return fmt.Errorf("marshaling snapshot header: %w", err)
	}

	tx, err := s.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM mode WHERE campaign_id = ?`, header.ID); err != nil {
		return fmt.Errorf("clearing rows of %s: %w", header.ID, err)
	}
	if _, err := tx.Exec(`DELETE FROM campaign WHERE id = ?`, header.ID); err != nil {
		return fmt.Errorf("clearing campaign %s: %w", header.ID, err)
	}
	if _, err := tx.Exec(`INSERT INTO campaign (id, name, created_at, header) VALUES (?, ?, ?, ?)`,
		header.ID, header.Name, header.CreatedAt, string(headerData)); err != nil {
		return fmt.Errorf("inserting campaign %s: %w", header.ID, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO mode (campaign_id, row_seq, config_index, value, wavenumber,
		mode_pos, mode_index, center, linewidth, q, pump, stokes, amplitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing mode insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for n, r := range flatten(snap.Results) {
		var modePos, modeIndex, pump, stokes sql.NullInt64
		var center, linewidth, q, amplitude sql.NullFloat64
		if r.HasMode {
			modePos = sql.NullInt64{Int64: int64(r.ModePos), Valid: true}
			modeIndex = sql.NullInt64{Int64: int64(r.ModeIndex), Valid: true}
			center = sql.NullFloat64{Float64: r.Center, Valid: true}
			linewidth = sql.NullFloat64{Float64: r.Linewidth, Valid: true}
			q = sql.NullFloat64{Float64: r.Q, Valid: true}
		}
		if r.HasCoupling {
			pump = sql.NullInt64{Int64: int64(r.Pump), Valid: true}
			stokes = sql.NullInt64{Int64: int64(r.Stokes), Valid: true}
			amplitude = sql.NullFloat64{Float64: r.Amplitude, Valid: true}
		}
		if _, err := stmt.Exec(header.ID, n, r.Config, r.Value, r.Wavenumber,
			modePos, modeIndex, center, linewidth, q, pump, stokes, amplitude); err != nil {
			return fmt.Errorf("inserting row %d: %w", n, err)
		}
	}
	return tx.Commit()
}

// Load returns the most recently saved snapshot.
func (s *SQLite) Load() (Snapshot, error) {
	var id string
	err := s.QueryRow(`SELECT id FROM campaign ORDER BY seq DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("%s holds no campaigns", s.path)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("finding latest campaign: %w", err)
	}
	return s.LoadID(id)
}

// LoadID returns the snapshot of one campaign.
func (s *SQLite) LoadID(id string) (Snapshot, error) {
	var headerData string
	err := s.QueryRow(`SELECT header FROM campaign WHERE id = ?`, id).Scan(&headerData)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading campaign %s: %w", id, err)
	}
	var header Header
	if err := yaml.Unmarshal([]byte(headerData), &header); err != nil {
		return Snapshot{}, fmt.Errorf("parsing snapshot header: %w", err)
	}

	rows, err := s.Query(`SELECT config_index, value, wavenumber, mode_pos, mode_index, center, linewidth, q,
		pump, stokes, amplitude FROM mode WHERE campaign_id = ? ORDER BY row_seq`, id)
	if err != nil {
		return Snapshot{}, fmt.Errorf("querying modes of %s: %w", id, err)
	}
	defer func() { _ = rows.Close() }()

	var flat []modeRow
	for rows.Next() {
		var r modeRow
		var modePos, modeIndex, pump, stokes sql.NullInt64
		var center, linewidth, q, amplitude sql.NullFloat64
		if err := rows.Scan(&r.Config, &r.Value, &r.Wavenumber, &modePos, &modeIndex, &center, &linewidth, &q,
			&pump, &stokes, &amplitude); err != nil {
			return Snapshot{}, fmt.Errorf("scanning mode row: %w", err)
		}
		if modePos.Valid {
			r.HasMode = true
			r.ModePos = int(modePos.Int64)
			r.ModeIndex = int(modeIndex.Int64)
			r.Center, r.Linewidth, r.Q = center.Float64, linewidth.Float64, q.Float64
		}
		if pump.Valid {
			r.HasCoupling = true
			r.Pump, r.Stokes, r.Amplitude = int(pump.Int64), int(stokes.Int64), amplitude.Float64
		}
		flat = append(flat, r)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("reading modes of %s: %w", id, err)
	}

	results, err := unflatten(header.Count, flat)
	if err != nil {
		return Snapshot{}, fmt.Errorf("rebuilding results: %w", err)
	}
	return Snapshot{Header: header, Results: results}, nil
}

// IDs lists the stored campaign IDs, oldest first.
func (s *SQLite) IDs() ([]string, error) {
	rows, err := s.Query(`SELECT id FROM campaign ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing campaigns: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
