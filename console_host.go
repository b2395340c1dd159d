package main

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

// ConsoleHost owns stdin for the interactive phases: it switches the
// terminal to raw mode and delivers single keypresses on a channel, so the
// session can select over keys and its monitor tick in one loop. Start and
// Stop bracket exactly one raw-mode window per process.
type ConsoleHost struct {
	keys         chan byte
	stopCh       chan struct{}
	done         chan struct{}
	stopOnce     sync.Once
	fd           int
	nonblockSet  bool
	oldTermState *term.State
}

func NewConsoleHost() *ConsoleHost {
	return &ConsoleHost{
		keys:   make(chan byte, 16),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
		fd:     int(os.Stdin.Fd()),
	}
}

// Keys returns the channel keypresses are delivered on. Keys arriving while
// no receiver is ready beyond the channel's buffer are dropped rather than
// blocking the reader.
func (h *ConsoleHost) Keys() <-chan byte {
	return h.keys
}

// Start switches stdin to raw non-blocking mode and begins the reader
// goroutine. Echo is off from here until Stop, so callers should confine
// output to carriage-return status lines while the host is running.
func (h *ConsoleHost) Start() error {
	oldState, err := term.MakeRaw(h.fd)
	if err != nil {
		return fmt.Errorf("failed to set raw terminal mode: %v", err)
	}
	h.oldTermState = oldState

	if err := syscall.SetNonblock(h.fd, true); err == nil {
		h.nonblockSet = true
	}

	go h.readLoop()
	return nil
}

func (h *ConsoleHost) readLoop() {
	defer close(h.done)
	buf := make([]byte, 1)
	for {
		select {
		case <-h.stopCh:
			return
		default:
		}

		n, err := syscall.Read(h.fd, buf)
		if err != nil {
			if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
				time.Sleep(5 * time.Millisecond)
				continue
			}
			return
		}
		if n == 0 {
			time.Sleep(5 * time.Millisecond)
			continue
		}

		key := buf[0]
		if key == '\r' {
			key = '\n'
		}

		select {
		case h.keys <- key:
		default:
		}
	}
}

// Stop terminates the reader and restores the terminal. Safe to call more
// than once; later calls are no-ops.
func (h *ConsoleHost) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
		<-h.done

		if h.nonblockSet {
			_ = syscall.SetNonblock(h.fd, false)
		}
		if h.oldTermState != nil {
			_ = term.Restore(h.fd, h.oldTermState)
		}
	})
}
