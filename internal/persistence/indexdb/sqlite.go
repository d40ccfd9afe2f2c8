// Package indexdb keeps a queryable SQLite index of the tick history. It is
// strictly secondary: writes go through a bounded channel and are dropped
// when the writer falls behind, because the compressed JSONL log already
// holds everything.
package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"voxelscript.dev/internal/sim/tuning"
	"voxelscript.dev/internal/sim/world"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan world.TickLogEntry
	wg   sync.WaitGroup
	once sync.Once

	closed  atomic.Bool
	dropped atomic.Uint64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		// Room for several seconds of ticks before backpressure drops any.
		ch: make(chan world.TickLogEntry, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads; NORMAL durability is
	// fine for a derived index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			tick INTEGER PRIMARY KEY,
			day INTEGER NOT NULL,
			hour REAL NOT NULL,
			digest TEXT NOT NULL,
			commands INTEGER NOT NULL,
			events INTEGER NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS commands (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			computer_id TEXT NOT NULL,
			label TEXT NOT NULL,
			ok INTEGER NOT NULL,
			code TEXT,
			message TEXT,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_commands_computer_tick ON commands(computer_id, tick);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// WriteTick implements world.TickSink. Never blocks the simulation.
func (s *SQLiteIndex) WriteTick(entry world.TickLogEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- entry:
	default:
		s.dropped.Add(1)
	}
	return nil
}

// Dropped reports how many entries were discarded under backpressure.
func (s *SQLiteIndex) Dropped() uint64 { return s.dropped.Load() }

// RecordTuning stores the tuning values actually applied, keyed by their
// canonical-JSON digest, so a replay can detect config drift.
func (s *SQLiteIndex) RecordTuning(tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	b, err := json.Marshal(tune)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(b)
	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('tuning_digest',?)`, hex.EncodeToString(sum[:])); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('tuning_json',?)`, string(b)); err != nil {
		return err
	}
	return tx.Commit()
}

// TickRange reports the lowest and highest indexed tick, ok=false when empty.
func (s *SQLiteIndex) TickRange() (lo, hi uint64, ok bool, err error) {
	row := s.db.QueryRow(`SELECT MIN(tick), MAX(tick) FROM ticks`)
	var minT, maxT sql.NullInt64
	if err := row.Scan(&minT, &maxT); err != nil {
		return 0, 0, false, err
	}
	if !minT.Valid {
		return 0, 0, false, nil
	}
	return uint64(minT.Int64), uint64(maxT.Int64), true, nil
}

// CommandsFor returns the indexed command records for one computer, oldest
// first.
func (s *SQLiteIndex) CommandsFor(computerID string, limit int) ([]world.CommandRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(
		`SELECT computer_id, label, ok, code, message FROM commands
		 WHERE computer_id = ? ORDER BY tick, seq LIMIT ?`, computerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []world.CommandRecord
	for rows.Next() {
		var r world.CommandRecord
		var ok int
		var code, message sql.NullString
		if err := rows.Scan(&r.Owner, &r.Label, &ok, &code, &message); err != nil {
			return nil, err
		}
		r.OK = ok != 0
		r.Code = code.String
		r.Message = message.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertTick, _ := s.db.Prepare(`INSERT OR REPLACE INTO ticks(tick,day,hour,digest,commands,events,raw_json) VALUES(?,?,?,?,?,?,?)`)
	insertCommand, _ := s.db.Prepare(`INSERT OR REPLACE INTO commands(tick,seq,computer_id,label,ok,code,message) VALUES(?,?,?,?,?,?,?)`)
	defer func() {
		if insertTick != nil {
			_ = insertTick.Close()
		}
		if insertCommand != nil {
			_ = insertCommand.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for entry := range s.ch {
		begin()
		if tx == nil || insertTick == nil {
			continue
		}
		raw, _ := json.Marshal(entry)
		if _, err := tx.Stmt(insertTick).Exec(
			int64(entry.Tick),
			entry.Day,
			entry.Hour,
			entry.Digest,
			len(entry.Commands),
			entry.Events,
			string(raw),
		); err != nil {
			rollback()
			continue
		}
		opCount++

		ok := true
		for i, c := range entry.Commands {
			if insertCommand == nil {
				break
			}
			okInt := 0
			if c.OK {
				okInt = 1
			}
			if _, err := tx.Stmt(insertCommand).Exec(
				int64(entry.Tick), i, c.Owner, c.Label, okInt, c.Code, c.Message,
			); err != nil {
				rollback()
				ok = false
				break
			}
			opCount++
		}
		if !ok {
			continue
		}

		// Commit when the queue is drained too: the single connection must
		// not sit inside an open tx while readers wait on it.
		if len(s.ch) == 0 || opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	commit()
}
