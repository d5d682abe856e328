package git

import (
	"errors"
	"net/url"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/maxbolgarin/errm"
)

// ErrNotRepository is returned when a configured path is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// IsRepository reports whether path is (or is inside) a git repository.
func (c *CLI) IsRepository(path string) bool {
	_, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	return err == nil
}

// OriginURL returns the first URL of the "origin" remote.
func (c *CLI) OriginURL(path string) (string, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", ErrNotRepository
	}
	remote, err := repo.Remote("origin")
	if err != nil {
		return "", errm.Wrap(err, "lookup origin remote")
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", errm.New("origin remote has no URL")
	}
	return urls[0], nil
}

// WebURL converts a remote URL (scp-like or https, with or without .git)
// into a browsable https URL. Returns "" for schemes it cannot map.
func WebURL(remote string) string {
	remote = strings.TrimSpace(remote)
	remote = strings.TrimSuffix(remote, ".git")

	switch {
	case strings.HasPrefix(remote, "https://"), strings.HasPrefix(remote, "http://"):
		u, err := url.Parse(remote)
		if err != nil || u.Host == "" {
			return ""
		}
		u.User = nil
		return "https://" + u.Host + u.Path
	case strings.HasPrefix(remote, "ssh://"):
		u, err := url.Parse(remote)
		if err != nil || u.Host == "" {
			return ""
		}
		return "https://" + u.Hostname() + u.Path
	case strings.Contains(remote, "@") && strings.Contains(remote, ":"):
		hostPath := remote[strings.Index(remote, "@")+1:]
		host, path, _ := strings.Cut(hostPath, ":")
		return "https://" + host + "/" + strings.TrimPrefix(path, "/")
	}
	return ""
}
