// Controller simulator: encodes left/right/intake command bytes and streams
// them to a rover's websocket control endpoint at a fixed rate. Useful for
// driving a rover without the real control surface.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edaniels/golog"
	"github.com/gorilla/websocket"

	"roverctl/internal/codec"
)

var logger = golog.NewDevelopmentLogger("controller")

func main() {
	addr := flag.String("addr", "127.0.0.1:8080", "rover control address")
	left := flag.Int("left", 127, "left drive command byte (0-255, 127=stop)")
	right := flag.Int("right", 127, "right drive command byte (0-255)")
	intake := flag.Int("intake", 0, "intake duty byte (0-255)")
	interval := flag.Int("interval", 100, "send interval ms")
	count := flag.Int("count", 0, "number of commands to send (0 = until interrupt)")
	flag.Parse()

	for name, v := range map[string]int{"left": *left, "right": *right, "intake": *intake} {
		if v < 0 || v > 255 {
			logger.Fatalf("%s out of range: %d", name, v)
		}
	}

	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/control", *addr), nil)
	if err != nil {
		logger.Fatalf("dial rover: %v", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			logger.Errorw("close conn", "error", cerr)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	value := codec.Encode(uint8(*left), uint8(*right), uint8(*intake))
	frame := fmt.Sprintf("CMD,0x%08X", value)
	logger.Infof("controller start: %s -> %s", frame, *addr)

	ticker := time.NewTicker(time.Duration(*interval) * time.Millisecond)
	defer ticker.Stop()

	sent := 0
	for {
		select {
		case <-stop:
			logger.Info("controller stopping")
			return
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				logger.Fatalf("write command: %v", err)
			}
			sent++
			if *count > 0 && sent >= *count {
				logger.Infof("sent %d commands", sent)
				return
			}
		}
	}
}
