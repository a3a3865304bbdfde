// Package vcs abstracts the git operations the repository auditor
// needs, so history walks can be faked in tests.
package vcs

import "time"

// Repository provides read access to a repository's commit history.
type Repository interface {
	// Log returns a commit iterator starting from HEAD.
	Log(opts *LogOptions) (CommitIterator, error)
}

// LogOptions configures the commit log query.
type LogOptions struct {
	Since *time.Time
}

// CommitIterator iterates over commits, newest first.
type CommitIterator interface {
	ForEach(fn func(Commit) error) error
	Close()
}

// Signature identifies the author of a commit.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// Commit exposes the parts of a git commit the auditor reads.
type Commit interface {
	// Hash returns the full commit hash as a hex string.
	Hash() string
	// Author returns commit author information.
	Author() Signature
	// Message returns the commit message.
	Message() string
	// TouchedPaths returns the paths modified by this commit.
	TouchedPaths() ([]string, error)
}

// Opener opens git repositories.
type Opener interface {
	// PlainOpen opens an existing git repository.
	PlainOpen(path string) (Repository, error)
	// PlainOpenWithDetect opens a git repository, detecting .git in
	// parent directories.
	PlainOpenWithDetect(path string) (Repository, error)
}
