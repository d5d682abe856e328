// Package sqlitepool opens SQLite connection pools with drift's standard
// pragmas: WAL journaling so readers never block the writer, NORMAL
// synchronous, and a busy timeout for write contention.
//
// Callers Take a connection, use it from one goroutine, and Put it back.
package sqlitepool

import (
	"context"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const defaultPoolSize = 4

// Config holds the parameters for opening a pool. Path is required.
type Config struct {
	// Path is the database file. The parent directory must exist.
	Path string

	// PoolSize defaults to 4.
	PoolSize int

	// OnConnect runs once per connection after the pragmas, typically to
	// create the schema.
	OnConnect func(conn *sqlite.Conn) error
}

// Pool is safe for concurrent use. Its connections are not.
type Pool struct {
	inner *sqlitex.Pool
	log   logze.Logger
	path  string
}

// Open creates the pool. Connections are initialized lazily on first Take.
func Open(cfg Config) (*Pool, error) {
	if cfg.Path == "" {
		return nil, errm.New("sqlitepool: path is required")
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}

	inner, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize: poolSize,
		PrepareConn: func(conn *sqlite.Conn) error {
			return prepareConnection(conn, cfg.OnConnect)
		},
	})
	if err != nil {
		return nil, errm.Wrap(err, "sqlitepool: open "+cfg.Path)
	}

	log := logze.With("component", "sqlitepool")
	log.Debug("sqlite pool opened", "path", cfg.Path, "pool_size", poolSize)

	return &Pool{inner: inner, log: log, path: cfg.Path}, nil
}

// Take borrows a connection, blocking until one is free or ctx is done.
// Every successful Take must be paired with Put:
//
//	conn, err := pool.Take(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Put(conn)
func (p *Pool) Take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := p.inner.Take(ctx)
	if err != nil {
		return nil, errm.Wrap(err, "sqlitepool: take")
	}
	return conn, nil
}

// Put returns a connection to the pool. Put(nil) is a no-op.
func (p *Pool) Put(conn *sqlite.Conn) {
	p.inner.Put(conn)
}

// Close blocks until every borrowed connection is returned.
func (p *Pool) Close() error {
	if err := p.inner.Close(); err != nil {
		p.log.Error("sqlite pool close error", "path", p.path, "error", err)
		return errm.Wrap(err, "sqlitepool: close "+p.path)
	}
	p.log.Debug("sqlite pool closed", "path", p.path)
	return nil
}

// Sessions and commits reference each other by id only; the store keeps
// them consistent inside its transactions, so foreign keys stay off.
var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA foreign_keys=OFF",
	"PRAGMA cache_size=-8192",
	"PRAGMA temp_store=MEMORY",
}

func prepareConnection(conn *sqlite.Conn, onConnect func(*sqlite.Conn) error) error {
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return errm.Wrap(err, "sqlitepool: "+pragma)
		}
	}
	if onConnect != nil {
		if err := onConnect(conn); err != nil {
			return errm.Wrap(err, "sqlitepool: on connect")
		}
	}
	return nil
}
