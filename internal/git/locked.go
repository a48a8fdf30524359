package git

import "sync"

// Locked serializes access to a shared Repo.
type Locked struct {
	mu   sync.Mutex
	repo *Repo
}

// NewLocked wraps repo. The caller must not use repo directly afterwards.
func NewLocked(repo *Repo) *Locked {
	return &Locked{repo: repo}
}

// Root returns the wrapped repository root.
func (l *Locked) Root() string {
	return l.repo.Root()
}

// Do runs fn with exclusive use of the repository, so the output fn reads
// back through Stdout and Stderr belongs to the commands fn ran.
func (l *Locked) Do(fn func(*Repo) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.repo)
}
