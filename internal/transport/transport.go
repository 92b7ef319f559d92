// Package transport delivers encoded motor commands written by a remote
// controller to the session loop.
//
// Frame wire format (controller -> rover), one CSV frame per line:
//
//	CONN,<peer>   remote controller attached (serial bridge only)
//	DISC          remote controller detached (serial bridge only)
//	CMD,<value>   attribute write; value is the 32-bit encoded command,
//	              decimal or 0x-prefixed hex
//
// A transport keeps only the most recently written value: if the controller
// writes faster than the session loop polls, intermediate values are lost
// (last-write-wins, by contract).
package transport

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Transport is the byte-value delivery channel the session loop polls.
// Exactly one session loop may consume a transport: HasNewValue reports
// writes since the last Value call.
type Transport interface {
	// Connected reports whether a remote controller is currently attached.
	Connected() bool

	// RemoteIdentity returns a diagnostic name for the attached controller.
	RemoteIdentity() string

	// HasNewValue reports whether a command has been written since the last
	// Value call.
	HasNewValue() bool

	// Value returns the most recently written encoded command and marks it
	// consumed.
	Value() uint32

	// Close tears the transport down and releases underlying resources.
	Close() error
}

// cell is the shared connection/value state behind a transport. All frame
// handling funnels into it under one lock.
type cell struct {
	mu        sync.Mutex
	connected bool
	peer      string
	value     uint32
	seq       uint64
	seen      uint64
}

func (c *cell) storeConn(peer string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = true
	c.peer = peer
}

func (c *cell) storeDisc() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	c.peer = ""
	// no state carries across sessions: a write the old session never
	// consumed must not be applied at the start of the next one
	c.seen = c.seq
}

func (c *cell) storeValue(v uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = v
	c.seq++
}

func (c *cell) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *cell) RemoteIdentity() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peer
}

func (c *cell) HasNewValue() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq != c.seen
}

func (c *cell) Value() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = c.seq
	return c.value
}

// applyFrame parses one wire frame and applies it to the cell.
func (c *cell) applyFrame(line string) error {
	fields := strings.Split(strings.TrimSpace(line), ",")
	switch fields[0] {
	case "CONN":
		peer := "unknown"
		if len(fields) >= 2 && fields[1] != "" {
			peer = fields[1]
		}
		c.storeConn(peer)
	case "DISC":
		c.storeDisc()
	case "CMD":
		if len(fields) < 2 {
			return fmt.Errorf("CMD frame missing value: %q", line)
		}
		v, err := strconv.ParseUint(fields[1], 0, 32)
		if err != nil {
			return fmt.Errorf("CMD frame bad value %q: %w", fields[1], err)
		}
		c.storeValue(uint32(v))
	default:
		return fmt.Errorf("unknown frame %q", fields[0])
	}
	return nil
}
