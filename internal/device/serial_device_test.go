package device

import (
	"io"
	"runtime"
	"testing"
	"time"

	"go.viam.com/test"
)

// pipePort is an in-memory stand-in for an open serial port.
type pipePort struct {
	*io.PipeReader
	w *io.PipeWriter
}

func newPipePort() (*pipePort, *io.PipeWriter) {
	r, w := io.Pipe()
	return &pipePort{PipeReader: r, w: w}, w
}

func (p *pipePort) Write(b []byte) (int, error) { return p.w.Write(b) }

func (p *pipePort) Close() error {
	_ = p.w.Close()
	return p.PipeReader.Close()
}

func TestReadLineDeliversLineAfterTimeouts(t *testing.T) {
	port, w := newPipePort()
	dev := newSerialDevice(port)
	defer func() {
		test.That(t, dev.Close(), test.ShouldBeNil)
	}()

	// An idle line times out without disturbing the reader.
	before := runtime.NumGoroutine()
	for i := 0; i < 20; i++ {
		_, err := dev.ReadLine(time.Millisecond)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "timeout")
	}
	// One reader owns the port; timed-out calls must not stack readers.
	test.That(t, runtime.NumGoroutine(), test.ShouldBeLessThanOrEqualTo, before+2)

	// The first frame after the idle gap reaches the next caller intact.
	go func() {
		_, _ = w.Write([]byte("CONN,C4:F3:12:0A:99:01\n"))
	}()
	line, err := dev.ReadLine(5 * time.Second)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, line, test.ShouldEqual, "CONN,C4:F3:12:0A:99:01\n")
}

func TestReadLineBlockingAndOrder(t *testing.T) {
	port, w := newPipePort()
	dev := newSerialDevice(port)
	defer func() {
		test.That(t, dev.Close(), test.ShouldBeNil)
	}()

	go func() {
		_, _ = w.Write([]byte("CMD,256\nCMD,512\n"))
	}()

	line, err := dev.ReadLine(0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, line, test.ShouldEqual, "CMD,256\n")
	line, err = dev.ReadLine(0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, line, test.ShouldEqual, "CMD,512\n")
}

func TestCloseUnblocksReadLine(t *testing.T) {
	port, _ := newPipePort()
	dev := newSerialDevice(port)

	errCh := make(chan error, 1)
	go func() {
		_, err := dev.ReadLine(0)
		errCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	test.That(t, dev.Close(), test.ShouldBeNil)
	select {
	case err := <-errCh:
		test.That(t, err, test.ShouldNotBeNil)
	case <-time.After(5 * time.Second):
		t.Fatal("ReadLine did not unblock on Close")
	}

	// closed device refuses writes
	test.That(t, dev.WriteLine("CMD,1"), test.ShouldNotBeNil)
}
