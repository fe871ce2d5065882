package filesystem

import (
	"os"

	"poke-battle-logger/domain/video"
)

// Checker implements video.FileChecker on the local disk
type Checker struct{}

// NewChecker creates a new filesystem checker
func NewChecker() *Checker {
	return &Checker{}
}

// Exists reports whether path is a regular, non-empty file. A directory or a
// zero-byte download stub does not count as a video.
func (c *Checker) Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}

var _ video.FileChecker = (*Checker)(nil)
