package store

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id            TEXT PRIMARY KEY,
	repo          TEXT NOT NULL,
	repo_path     TEXT NOT NULL,
	branch        TEXT NOT NULL,
	author        TEXT NOT NULL,
	start_time    TEXT NOT NULL,
	end_time      TEXT NOT NULL,
	files_changed INTEGER NOT NULL DEFAULT 0,
	insertions    INTEGER NOT NULL DEFAULT 0,
	deletions     INTEGER NOT NULL DEFAULT 0,
	pr_number     INTEGER,
	pr_title      TEXT,
	created_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
);

CREATE TABLE IF NOT EXISTS commits (
	hash          TEXT PRIMARY KEY,
	session_id    TEXT NOT NULL REFERENCES sessions(id),
	author        TEXT NOT NULL,
	email         TEXT NOT NULL,
	date          TEXT NOT NULL,
	message       TEXT NOT NULL,
	body          TEXT NOT NULL DEFAULT '',
	repo          TEXT NOT NULL,
	repo_path     TEXT NOT NULL,
	branch        TEXT NOT NULL,
	files_changed INTEGER NOT NULL DEFAULT 0,
	insertions    INTEGER NOT NULL DEFAULT 0,
	deletions     INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_sessions_start ON sessions(start_time);
CREATE INDEX IF NOT EXISTS idx_sessions_repo ON sessions(repo);
CREATE INDEX IF NOT EXISTS idx_commits_session ON commits(session_id);
`
