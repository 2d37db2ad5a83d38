package fdio

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestSetNonblockThenWouldBlock(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("Socketpair: %v", err)
	}
	defer Close(fds[0])
	defer Close(fds[1])

	if err := SetNonblock(fds[0]); err != nil {
		t.Fatalf("SetNonblock: %v", err)
	}

	buf := make([]byte, 16)
	_, readErr := unix.Read(fds[0], buf)
	if !IsWouldBlock(readErr) {
		t.Fatalf("expected a would-block error on an empty nonblocking socket, got %v", readErr)
	}
}
