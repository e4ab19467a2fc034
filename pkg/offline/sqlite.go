package offline

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"
)

const operationsTable = "operations_queue"

const schema = `
CREATE TABLE IF NOT EXISTS operations_queue (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	type       TEXT    NOT NULL,
	identifier TEXT    NOT NULL DEFAULT '',
	data       TEXT    NOT NULL,
	files      TEXT    NOT NULL DEFAULT '[]',
	timestamp  INTEGER NOT NULL,
	status     TEXT    NOT NULL
)`

var operationColumns = []string{"id", "type", "identifier", "data", "files", "timestamp", "status"}

// SQLiteStore keeps the queue in a local SQLite file (WAL mode).
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time

	mu           sync.Mutex
	listeners    map[int]func()
	nextListener int
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) the queue database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create queue dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open queue db: %w", err)
	}
	// one writer; avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		schema,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init queue db: %w", err)
		}
	}

	return &SQLiteStore{
		db:        db,
		now:       time.Now,
		listeners: make(map[int]func()),
	}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Add(ctx context.Context, op Operation) (int64, error) {
	files, err := json.Marshal(op.Files)
	if err != nil {
		return 0, fmt.Errorf("encode files: %w", err)
	}
	data := op.Data
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}

	query, args, err := sq.Insert(operationsTable).
		Columns("type", "identifier", "data", "files", "timestamp", "status").
		Values(string(op.Type), op.Identifier, string(data), string(files), s.now().UnixMilli(), string(StatusPending)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert operation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("operation id: %w", err)
	}

	s.notify()
	return id, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Operation, error) {
	query, args, err := sq.Select(operationColumns...).From(operationsTable).OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	defer rows.Close()

	ops := []Operation{}
	for rows.Next() {
		var (
			op          Operation
			typ, status string
			data, files string
			ts          int64
		)
		if err := rows.Scan(&op.ID, &typ, &op.Identifier, &data, &files, &ts, &status); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		op.Type = OperationType(typ)
		op.Status = Status(status)
		op.Data = json.RawMessage(data)
		op.Timestamp = time.UnixMilli(ts)
		if err := json.Unmarshal([]byte(files), &op.Files); err != nil {
			return nil, fmt.Errorf("decode files of operation %d: %w", op.ID, err)
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

func (s *SQLiteStore) Remove(ctx context.Context, id int64) error {
	query, args, err := sq.Delete(operationsTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remove operation %d: %w", id, err)
	}
	s.notify()
	return nil
}

// UpdateStatus is a no-op for unknown ids; listeners are notified either way.
func (s *SQLiteStore) UpdateStatus(ctx context.Context, id int64, status Status) error {
	query, args, err := sq.Update(operationsTable).Set("status", string(status)).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update operation %d: %w", id, err)
	}
	s.notify()
	return nil
}

func (s *SQLiteStore) HasOperations(ctx context.Context) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM "+operationsTable+" LIMIT 1").Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check queue: %w", err)
	}
	return true, nil
}

func (s *SQLiteStore) AddChangeListener(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *SQLiteStore) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
