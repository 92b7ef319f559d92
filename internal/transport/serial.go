package transport

import (
	"strings"
	"time"

	"github.com/edaniels/golog"

	"roverctl/internal/device"
)

// Serial receives frames from a wireless bridge module (e.g. a BLE UART
// co-processor) over a serial line. The bridge owns discovery, pairing and
// advertisement; it forwards connection edges and attribute writes as CSV
// frames, which makes the serial line a pure byte-value delivery channel.
type Serial struct {
	cell
	dev    device.Device
	logger golog.Logger
	stop   chan struct{}
	done   chan struct{}
}

var _ Transport = (*Serial)(nil)

// NewSerial starts a reader over an already-open device.
func NewSerial(dev device.Device, logger golog.Logger) *Serial {
	s := &Serial{
		dev:    dev,
		logger: logger,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s
}

func (s *Serial) readLoop() {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			return
		default:
		}
		// Block until the bridge sends a frame; Close unblocks the read.
		line, err := s.dev.ReadLine(0)
		if err != nil {
			// non-fatal: wait and retry
			select {
			case <-s.stop:
				return
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := s.applyFrame(line); err != nil {
			s.logger.Debugf("bridge frame dropped: %v", err)
		}
	}
}

// Close stops the reader and closes the underlying device.
func (s *Serial) Close() error {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	err := s.dev.Close()
	<-s.done
	return err
}
