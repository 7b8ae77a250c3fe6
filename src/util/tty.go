package util

import (
	"os"

	"golang.org/x/term"
)

// RawStdin puts stdin into raw mode for the duration of an interactive VM run, the way elsie's
// cmd/internal/tty.NewConsole does, so a program's READ can consume one line at a time without
// the terminal double-echoing or line-buffering input out from under the VM. If stdin is not a
// terminal (piped input, a redirected file, a test harness) it is a no-op: the returned restore
// function does nothing and ok is false, and callers should fall back to plain buffered reads.
func RawStdin() (restore func(), ok bool) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return func() {}, false
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return func() {}, false
	}
	return func() { _ = term.Restore(fd, state) }, true
}
