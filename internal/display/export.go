package display

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/gnomegl/drift/internal/models"
	jsoniter "github.com/json-iterator/go"
	"github.com/maxbolgarin/errm"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type JSONSession struct {
	ID           string       `json:"id"`
	Repo         string       `json:"repo"`
	RepoPath     string       `json:"repo_path"`
	Branch       string       `json:"branch"`
	Author       string       `json:"author"`
	StartTime    time.Time    `json:"start_time"`
	EndTime      time.Time    `json:"end_time"`
	FilesChanged int          `json:"files_changed"`
	Insertions   int          `json:"insertions"`
	Deletions    int          `json:"deletions"`
	PRNumber     int          `json:"pr_number,omitempty"`
	PRTitle      string       `json:"pr_title,omitempty"`
	Commits      []JSONCommit `json:"commits"`
}

type JSONCommit struct {
	Hash         string    `json:"hash"`
	Author       string    `json:"author"`
	Email        string    `json:"email"`
	Date         time.Time `json:"date"`
	Message      string    `json:"message"`
	Body         string    `json:"body,omitempty"`
	FilesChanged int       `json:"files_changed"`
	Insertions   int       `json:"insertions"`
	Deletions    int       `json:"deletions"`
}

func toJSON(s models.Session) JSONSession {
	out := JSONSession{
		ID:           s.ID,
		Repo:         s.Repo,
		RepoPath:     s.RepoPath,
		Branch:       s.Branch,
		Author:       s.Author,
		StartTime:    s.StartTime.UTC(),
		EndTime:      s.EndTime.UTC(),
		FilesChanged: s.FilesChanged,
		Insertions:   s.Insertions,
		Deletions:    s.Deletions,
		PRNumber:     s.PRNumber,
		PRTitle:      s.PRTitle,
		Commits:      make([]JSONCommit, 0, len(s.Commits)),
	}
	for _, c := range s.Commits {
		out.Commits = append(out.Commits, JSONCommit{
			Hash:         c.Hash,
			Author:       c.Author,
			Email:        c.Email,
			Date:         c.Date.UTC(),
			Message:      c.Message,
			Body:         c.Body,
			FilesChanged: c.FilesChanged,
			Insertions:   c.Insertions,
			Deletions:    c.Deletions,
		})
	}
	return out
}

// ExportJSON writes sessions as an indented JSON array.
func ExportJSON(w io.Writer, sessions []models.Session) error {
	out := make([]JSONSession, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toJSON(s))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return errm.Wrap(err, "encode sessions")
	}
	return nil
}

var csvHeaders = []string{
	"session_id",
	"repo",
	"branch",
	"author",
	"start_time",
	"end_time",
	"commits",
	"files_changed",
	"insertions",
	"deletions",
	"pr_number",
	"pr_title",
}

// ExportCSV writes one row per session.
func ExportCSV(w io.Writer, sessions []models.Session) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeaders); err != nil {
		return errm.Wrap(err, "write csv header")
	}
	for _, s := range sessions {
		pr := ""
		if s.HasPR() {
			pr = strconv.Itoa(s.PRNumber)
		}
		row := []string{
			s.ID,
			s.Repo,
			s.Branch,
			s.Author,
			s.StartTime.UTC().Format(time.RFC3339),
			s.EndTime.UTC().Format(time.RFC3339),
			strconv.Itoa(len(s.Commits)),
			strconv.Itoa(s.FilesChanged),
			strconv.Itoa(s.Insertions),
			strconv.Itoa(s.Deletions),
			pr,
			s.PRTitle,
		}
		if err := writer.Write(row); err != nil {
			return errm.Wrap(err, "write csv row "+s.ID)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errm.Wrap(err, "flush csv")
	}
	return nil
}
