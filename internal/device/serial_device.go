package device

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"

	serial "go.bug.st/serial"
)

type lineResult struct {
	line string
	err  error
}

// SerialDevice implements Device using go.bug.st/serial. A single reader
// goroutine owns the buffered reader for the lifetime of the device, so a
// timed-out ReadLine never abandons an in-flight read: the line it would
// have returned is delivered to the next caller instead of being lost.
type SerialDevice struct {
	port   io.ReadWriteCloser
	lines  chan lineResult
	closed chan struct{}
}

// NewSerialDevice creates and opens a serial device with the given path and baudrate.
func NewSerialDevice(dev string, baud int) (*SerialDevice, error) {
	p, err := serial.Open(dev, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial %s: %w", dev, err)
	}
	return newSerialDevice(p), nil
}

// newSerialDevice wraps an already-open port.
func newSerialDevice(port io.ReadWriteCloser) *SerialDevice {
	s := &SerialDevice{
		port:   port,
		lines:  make(chan lineResult),
		closed: make(chan struct{}),
	}
	go s.readLines()
	return s
}

// readLines is the only reader of the port. It stops at the first read
// error, after handing that error to a caller.
func (s *SerialDevice) readLines() {
	r := bufio.NewReader(s.port)
	for {
		line, err := r.ReadString('\n')
		select {
		case s.lines <- lineResult{line: line, err: err}:
		case <-s.closed:
			return
		}
		if err != nil {
			return
		}
	}
}

// Close closes the underlying serial connection and unblocks any pending
// ReadLine.
func (s *SerialDevice) Close() error {
	select {
	case <-s.closed:
		return nil
	default:
		close(s.closed)
	}
	return s.port.Close()
}

// ReadLine returns the next line from the serial port. With timeout <= 0 it
// blocks until a line arrives, the port errors, or the device is closed.
func (s *SerialDevice) ReadLine(timeout time.Duration) (string, error) {
	var timer <-chan time.Time
	if timeout > 0 {
		timer = time.After(timeout)
	}
	select {
	case res := <-s.lines:
		return res.line, res.err
	case <-s.closed:
		return "", errors.New("serial port closed")
	case <-timer:
		return "", errors.New("read timeout")
	}
}

// WriteLine writes a single line followed by '\n' to the serial port.
func (s *SerialDevice) WriteLine(line string) error {
	select {
	case <-s.closed:
		return errors.New("serial port closed")
	default:
	}
	_, err := s.port.Write(append([]byte(line), '\n'))
	return err
}
