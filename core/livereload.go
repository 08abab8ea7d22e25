package core

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const LiveReloadPath = "/__storefront_reload"

type LiveReloaderInterface interface {
	BroadcastReload()
	Handler(http.ResponseWriter, *http.Request)
	Close()
}

// LiveReloader keeps the dev browsers' websocket connections and tells them
// to reload after a template or asset changes.
type LiveReloader struct {
	logger   *zap.Logger
	clients  map[*websocket.Conn]bool
	lock     sync.Mutex
	upgrader websocket.Upgrader
	wg       sync.WaitGroup
	closed   bool
}

var NewLiveReloader = func(logger *zap.Logger) LiveReloaderInterface {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LiveReloader{
		logger:  logger.Named("livereload"),
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (lr *LiveReloader) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := lr.upgrader.Upgrade(w, r, nil)
	if err != nil {
		lr.logger.Debug("upgrade failed", zap.Error(err))
		return
	}

	lr.lock.Lock()
	if lr.closed {
		lr.lock.Unlock()
		conn.Close()
		return
	}
	lr.clients[conn] = true
	lr.wg.Add(1)
	lr.lock.Unlock()

	go func() {
		defer lr.wg.Done()
		defer lr.drop(conn)

		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()
}

func (lr *LiveReloader) BroadcastReload() {
	lr.lock.Lock()
	defer lr.lock.Unlock()

	for conn := range lr.clients {
		if err := conn.WriteMessage(websocket.TextMessage, []byte("reload")); err != nil {
			conn.Close()
			delete(lr.clients, conn)
		}
	}
	lr.logger.Debug("reload broadcast", zap.Int("clients", len(lr.clients)))
}

// Close disconnects every client, refuses new ones and waits for their readers to exit.
func (lr *LiveReloader) Close() {
	lr.lock.Lock()
	lr.closed = true
	for conn := range lr.clients {
		conn.Close()
	}
	lr.lock.Unlock()
	lr.wg.Wait()
}

func (lr *LiveReloader) clientCount() int {
	lr.lock.Lock()
	defer lr.lock.Unlock()
	return len(lr.clients)
}

func (lr *LiveReloader) drop(conn *websocket.Conn) {
	lr.lock.Lock()
	delete(lr.clients, conn)
	lr.lock.Unlock()
	conn.Close()
}
