// Package store persists sessions and their commits in SQLite.
//
// A Store is opened once per process and handed to whatever needs it.
// Writes are serialized; reads run concurrently against the WAL.
package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gnomegl/drift/internal/models"
	"github.com/gnomegl/drift/internal/sqlitepool"
	"github.com/gnomegl/drift/internal/utils"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// DefaultLimit is used by List when the caller passes a non-positive limit.
const DefaultLimit = 50

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ErrNotFound is returned by GetByID when no session matches.
var ErrNotFound = errors.New("session not found")

type Config struct {
	// Path is the database file. "~" is expanded and the parent
	// directory is created.
	Path string
	// PoolSize defaults to 4.
	PoolSize int
}

type Store struct {
	pool *sqlitepool.Pool
	log  logze.Logger

	// writeMu keeps batches from interleaving even if the transaction
	// has to wait on busy_timeout.
	writeMu sync.Mutex
}

// Open opens or creates the session database. The caller must Close it.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	path := utils.ExpandHome(cfg.Path)
	if path == "" {
		return nil, errm.New("store: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errm.Wrap(err, "store: create database directory")
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     path,
		PoolSize: cfg.PoolSize,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, errm.Wrap(err, "store")
	}

	s := &Store{pool: pool, log: logze.With("component", "store")}

	// Fail fast on a corrupt or unwritable database instead of on first use.
	conn, err := pool.Take(ctx)
	if err != nil {
		pool.Close()
		return nil, errm.Wrap(err, "store: initialize "+path)
	}
	pool.Put(conn)

	return s, nil
}

func (s *Store) Close() error {
	return s.pool.Close()
}

// Save upserts every session and its commits in one transaction. A stored
// session with the same id is replaced together with all of its previous
// commits. On error nothing from the batch is kept.
func (s *Store) Save(ctx context.Context, sessions []models.Session) (err error) {
	if len(sessions) == 0 {
		return nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return errm.Wrap(err, "store: save")
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return errm.Wrap(err, "store: begin transaction")
	}
	defer endTransaction(&err)

	commits := 0
	seen := make(map[string]struct{}, len(sessions))
	for i := range sessions {
		id := sessions[i].ID
		if _, dup := seen[id]; dup {
			s.log.Warn("duplicate session id in batch, earlier commits replaced",
				"id", id, "author", sessions[i].Author)
		}
		seen[id] = struct{}{}

		if err = saveSession(conn, &sessions[i]); err != nil {
			return err
		}
		commits += len(sessions[i].Commits)
	}

	// A commit that moved to another session leaves its old session empty.
	err = sqlitex.Execute(conn,
		`DELETE FROM sessions WHERE id NOT IN (SELECT DISTINCT session_id FROM commits)`, nil)
	if err != nil {
		return errm.Wrap(err, "store: remove empty sessions")
	}

	s.log.Debug("sessions saved", "sessions", len(sessions), "commits", commits)
	return nil
}

func saveSession(conn *sqlite.Conn, session *models.Session) error {
	err := sqlitex.Execute(conn, `DELETE FROM commits WHERE session_id = ?`, &sqlitex.ExecOptions{
		Args: []any{session.ID},
	})
	if err != nil {
		return errm.Wrap(err, "store: clear commits of "+session.ID)
	}

	var prNumber, prTitle any
	if session.HasPR() {
		prNumber = session.PRNumber
		prTitle = session.PRTitle
	}

	err = sqlitex.Execute(conn, `
		INSERT OR REPLACE INTO sessions
			(id, repo, repo_path, branch, author, start_time, end_time,
			 files_changed, insertions, deletions, pr_number, pr_title)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{
				session.ID, session.Repo, session.RepoPath, session.Branch, session.Author,
				formatTime(session.StartTime), formatTime(session.EndTime),
				session.FilesChanged, session.Insertions, session.Deletions,
				prNumber, prTitle,
			},
		})
	if err != nil {
		return errm.Wrap(err, "store: insert session "+session.ID)
	}

	for i := range session.Commits {
		c := &session.Commits[i]
		err = sqlitex.Execute(conn, `
			INSERT OR REPLACE INTO commits
				(hash, session_id, author, email, date, message, body,
				 repo, repo_path, branch, files_changed, insertions, deletions)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{
				Args: []any{
					c.Hash, session.ID, c.Author, c.Email, formatTime(c.Date), c.Message, c.Body,
					c.Repo, c.RepoPath, c.Branch, c.FilesChanged, c.Insertions, c.Deletions,
				},
			})
		if err != nil {
			return errm.Wrap(err, "store: insert commit "+c.Hash)
		}
	}
	return nil
}

const sessionColumns = `id, repo, repo_path, branch, author, start_time, end_time,
	files_changed, insertions, deletions, pr_number, pr_title`

// List returns up to limit sessions, newest first, each with its commits
// oldest first.
func (s *Store) List(ctx context.Context, limit int) ([]models.Session, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, errm.Wrap(err, "store: list")
	}
	defer s.pool.Put(conn)

	sessions, err := querySessions(conn,
		`SELECT `+sessionColumns+` FROM sessions ORDER BY start_time DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	if err := loadCommits(conn, sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetByID returns the session with exactly this id or, failing that, the
// newest session whose id starts with it. It returns ErrNotFound when
// neither exists.
func (s *Store) GetByID(ctx context.Context, id string) (*models.Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, errm.Wrap(err, "store: get session")
	}
	defer s.pool.Put(conn)

	sessions, err := querySessions(conn,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		sessions, err = querySessions(conn,
			`SELECT `+sessionColumns+` FROM sessions WHERE substr(id, 1, length(?)) = ?
			 ORDER BY start_time DESC, id ASC LIMIT 1`, id, id)
		if err != nil {
			return nil, err
		}
	}
	if len(sessions) == 0 {
		return nil, ErrNotFound
	}

	if err := loadCommits(conn, sessions); err != nil {
		return nil, err
	}
	return &sessions[0], nil
}

// Count returns the number of stored sessions.
func (s *Store) Count(ctx context.Context) (int, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return 0, errm.Wrap(err, "store: count")
	}
	defer s.pool.Put(conn)

	var count int
	err = sqlitex.Execute(conn, `SELECT COUNT(*) FROM sessions`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			count = stmt.ColumnInt(0)
			return nil
		},
	})
	if err != nil {
		return 0, errm.Wrap(err, "store: count sessions")
	}
	return count, nil
}

func querySessions(conn *sqlite.Conn, query string, args ...any) ([]models.Session, error) {
	sessions := []models.Session{}
	err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			start, err := parseTime(stmt.ColumnText(5))
			if err != nil {
				return err
			}
			end, err := parseTime(stmt.ColumnText(6))
			if err != nil {
				return err
			}

			session := models.Session{
				ID:           stmt.ColumnText(0),
				Repo:         stmt.ColumnText(1),
				RepoPath:     stmt.ColumnText(2),
				Branch:       stmt.ColumnText(3),
				Author:       stmt.ColumnText(4),
				StartTime:    start,
				EndTime:      end,
				FilesChanged: stmt.ColumnInt(7),
				Insertions:   stmt.ColumnInt(8),
				Deletions:    stmt.ColumnInt(9),
			}
			if stmt.ColumnType(10) != sqlite.TypeNull {
				session.PRNumber = stmt.ColumnInt(10)
				session.PRTitle = stmt.ColumnText(11)
			}
			sessions = append(sessions, session)
			return nil
		},
	})
	if err != nil {
		return nil, errm.Wrap(err, "store: query sessions")
	}
	return sessions, nil
}

func loadCommits(conn *sqlite.Conn, sessions []models.Session) error {
	for i := range sessions {
		session := &sessions[i]
		err := sqlitex.Execute(conn, `
			SELECT hash, author, email, date, message, body, repo, repo_path, branch,
			       files_changed, insertions, deletions
			FROM commits WHERE session_id = ? ORDER BY date ASC, hash ASC`,
			&sqlitex.ExecOptions{
				Args: []any{session.ID},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					date, err := parseTime(stmt.ColumnText(3))
					if err != nil {
						return err
					}
					hash := stmt.ColumnText(0)
					session.Commits = append(session.Commits, models.Commit{
						Hash:         hash,
						HashShort:    shortHash(hash),
						Author:       stmt.ColumnText(1),
						Email:        stmt.ColumnText(2),
						Date:         date,
						Message:      stmt.ColumnText(4),
						Body:         stmt.ColumnText(5),
						Repo:         stmt.ColumnText(6),
						RepoPath:     stmt.ColumnText(7),
						Branch:       stmt.ColumnText(8),
						FilesChanged: stmt.ColumnInt(9),
						Insertions:   stmt.ColumnInt(10),
						Deletions:    stmt.ColumnInt(11),
					})
					return nil
				},
			})
		if err != nil {
			return errm.Wrap(err, "store: load commits of "+session.ID)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		// Rows written by other tools may use plain RFC 3339.
		t, err = time.Parse(time.RFC3339Nano, value)
		if err != nil {
			return time.Time{}, errm.Wrap(err, "store: parse timestamp "+value)
		}
	}
	return t.UTC(), nil
}

func shortHash(hash string) string {
	if len(hash) <= 7 {
		return hash
	}
	return hash[:7]
}
