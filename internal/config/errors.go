package config

import "errors"

var (
	ErrNoConfig       = errors.New("no configuration found")
	ErrNoRepos        = errors.New("no repos configured")
	ErrInvalidPattern = errors.New("invalid agent message pattern")
	ErrEmptyRepoPath  = errors.New("repo path is required")
	ErrInvalidTheme   = errors.New("theme must be dark or light")
)
