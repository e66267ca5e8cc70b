// Package identity persists the short list of usernames that have
// verified successfully, so the panel can suggest them next time. It
// is a UX convenience with no security meaning: the backend re-checks
// instance membership on every panel open regardless.
package identity

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// MaxCached is the cap on remembered usernames. Overflow drops the
// least recently used entry.
const MaxCached = 5

const schema = `
CREATE TABLE IF NOT EXISTS usernames (
	lower   TEXT PRIMARY KEY,
	name    TEXT NOT NULL,
	used_at INTEGER NOT NULL
);
`

// Store is the sqlite-backed username cache. Every failure mode —
// unopenable file, corrupt database, write error — degrades to
// empty-list / no-op behavior and is never surfaced to the caller.
// The UI must keep working without it.
type Store struct {
	pool *sqlitex.Pool
	log  *zap.Logger
}

// Open opens (or creates) the cache at path. The returned Store is
// always usable; if the database can't be opened it behaves as a
// permanently empty cache.
func Open(path string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		PoolSize: 1,
		PrepareConn: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		log.Warn("identity cache unavailable", zap.String("path", path), zap.Error(err))
		return &Store{log: log}
	}
	return &Store{pool: pool, log: log}
}

// Close releases the database. Safe on a degraded store.
func (s *Store) Close() {
	if s.pool != nil {
		_ = s.pool.Close()
	}
}

// List returns cached usernames, most recently used first, at most
// MaxCached entries. An unavailable store returns an empty list.
func (s *Store) List() []string {
	var names []string
	s.withConn("list", func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			"SELECT name FROM usernames ORDER BY used_at DESC LIMIT ?",
			&sqlitex.ExecOptions{
				Args: []any{MaxCached},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					names = append(names, stmt.ColumnText(0))
					return nil
				},
			})
	})
	return names
}

// Remember promotes username to the front of the list, inserting it if
// new. Matching is case-insensitive; the stored casing is updated to
// the latest submission. Overflow past MaxCached is pruned.
func (s *Store) Remember(username string) {
	username = strings.TrimSpace(username)
	if username == "" {
		return
	}
	s.withConn("remember", func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn,
			`INSERT INTO usernames (lower, name, used_at)
			 VALUES (?, ?, (SELECT COALESCE(MAX(used_at), 0) + 1 FROM usernames))
			 ON CONFLICT(lower) DO UPDATE SET
			   name = excluded.name,
			   used_at = excluded.used_at`,
			&sqlitex.ExecOptions{Args: []any{strings.ToLower(username), username}})
		if err != nil {
			return err
		}
		return sqlitex.Execute(conn,
			`DELETE FROM usernames WHERE lower NOT IN
			   (SELECT lower FROM usernames ORDER BY used_at DESC LIMIT ?)`,
			&sqlitex.ExecOptions{Args: []any{MaxCached}})
	})
}

// Forget removes username from the list, case-insensitively.
func (s *Store) Forget(username string) {
	s.withConn("forget", func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			"DELETE FROM usernames WHERE lower = ?",
			&sqlitex.ExecOptions{Args: []any{strings.ToLower(strings.TrimSpace(username))}})
	})
}

func (s *Store) withConn(op string, fn func(*sqlite.Conn) error) {
	if s.pool == nil {
		return
	}
	conn, err := s.pool.Take(context.Background())
	if err != nil {
		s.log.Warn("identity cache take failed", zap.String("op", op), zap.Error(err))
		return
	}
	defer s.pool.Put(conn)
	if err := fn(conn); err != nil {
		s.log.Warn("identity cache op failed", zap.String("op", op), zap.Error(err))
	}
}
