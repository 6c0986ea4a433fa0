package routes

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/petervdpas/codeseed/internal/preview"
)

const liveWriteTimeout = 10 * time.Second

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 65536,
}

func registerLiveRoutes(mux *http.ServeMux, d Deps) {
	handleGet(mux, "/preview/live", func(w http.ResponseWriter, r *http.Request) {
		project, err := projectParam(r)
		if err != nil {
			writeError(w, err)
			return
		}

		conn, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Debugf("live [%s]: upgrade: %v", project, err)
			return
		}
		defer conn.Close()

		updates, cancel := d.Hub.Subscribe(project)
		defer cancel()
		log.Debugf("live [%s]: connected (%d watching)", project, d.Hub.Subscribers(project))

		// Drain incoming frames so close and ping are handled.
		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-gone:
				log.Debugf("live [%s]: disconnected", project)
				return
			case u, ok := <-updates:
				if !ok {
					return
				}
				if err := writeUpdate(conn, u); err != nil {
					return
				}
			}
		}
	})
}

func writeUpdate(conn *websocket.Conn, u preview.Update) error {
	_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
	return conn.WriteJSON(u)
}
