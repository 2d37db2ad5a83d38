// Package fdio wraps golang.org/x/sys/unix with the non-blocking,
// EAGAIN-aware file descriptor operations the dson engine's CopyToFD/
// LoadFromFD methods are written against. It is kept separate from the
// core dson package: spec.md treats the byte source as an external
// collaborator, not part of the codec itself.
package fdio

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// SetNonblock puts fd into non-blocking mode, so reads/writes on it return
// EAGAIN instead of blocking the calling goroutine.
func SetNonblock(fd int) error {
	if err := unix.SetNonblock(fd, true); err != nil {
		return fmt.Errorf("fdio: set nonblocking: %w", err)
	}
	return nil
}

// IsWouldBlock reports whether err is the non-blocking "try again" signal
// a dson.Result InProcess should be derived from.
func IsWouldBlock(err error) bool {
	return err == unix.EAGAIN || err == unix.EWOULDBLOCK
}

// Close closes fd, ignoring EINTR.
func Close(fd int) error {
	for {
		err := unix.Close(fd)
		if err == unix.EINTR {
			continue
		}
		return err
	}
}
