package transport

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// WS accepts a single controller over a websocket and treats each text
// message as one wire frame. The websocket connection itself is the
// connect/disconnect edge; payloads are CMD frames. A second concurrent
// controller is refused (there is no multi-controller arbitration).
type WS struct {
	cell
	addr   string
	logger golog.Logger
	server *http.Server

	mu     sync.Mutex
	busy   bool
	active *websocket.Conn
	wg     sync.WaitGroup
}

var _ Transport = (*WS)(nil)

// NewWS listens on addr (e.g. ":8080") and serves the control endpoint at
// /control.
func NewWS(addr string, logger golog.Logger) (*WS, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("control listen %s: %w", addr, err)
	}

	w := &WS{addr: ln.Addr().String(), logger: logger}
	mux := http.NewServeMux()
	mux.HandleFunc("/control", w.handleControl)
	w.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := w.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Errorw("control server stopped", "error", err)
		}
	}()
	return w, nil
}

// Addr returns the bound listen address.
func (w *WS) Addr() string {
	return w.addr
}

// reserve claims the single controller slot; the claim happens before the
// upgrade so two simultaneous dialers cannot both get through.
func (w *WS) reserve() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return false
	}
	w.busy = true
	return true
}

func (w *WS) release() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false
	w.active = nil
}

// handleControl upgrades HTTP to websocket and reads frames until the
// controller goes away.
func (w *WS) handleControl(rw http.ResponseWriter, r *http.Request) {
	if !w.reserve() {
		http.Error(rw, "controller already attached", http.StatusConflict)
		return
	}

	conn, err := upgrader.Upgrade(rw, r, nil)
	if err != nil {
		w.release()
		w.logger.Debugf("upgrade failed: %v", err)
		return
	}

	w.mu.Lock()
	w.active = conn
	w.mu.Unlock()
	w.storeConn(r.RemoteAddr)

	defer func() {
		w.storeDisc()
		w.release()
		if err := conn.Close(); err != nil {
			w.logger.Debugf("close controller conn: %v", err)
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		// The socket itself carries the connection edges; only attribute
		// writes are valid payloads here.
		if !strings.HasPrefix(string(msg), "CMD") {
			w.logger.Debugf("controller frame dropped: %q", msg)
			continue
		}
		if err := w.applyFrame(string(msg)); err != nil {
			w.logger.Debugf("controller frame dropped: %v", err)
		}
	}
}

// Close shuts the server down and drops any attached controller.
func (w *WS) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := w.server.Shutdown(ctx)

	w.mu.Lock()
	if w.active != nil {
		_ = w.active.Close()
	}
	w.mu.Unlock()

	w.wg.Wait()
	return err
}
