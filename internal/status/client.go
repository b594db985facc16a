package status

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/handiism/spotify-dl/internal/progress"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS middleware configuration.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// client is one websocket connection.
type client struct {
	conn        *websocket.Conn
	updates     <-chan progress.Update
	unsubscribe func()
	logger      *slog.Logger
	closeOnce   sync.Once
}

func newClient(conn *websocket.Conn, updates <-chan progress.Update, unsubscribe func(), logger *slog.Logger) *client {
	return &client{conn: conn, updates: updates, unsubscribe: unsubscribe, logger: logger}
}

func (c *client) start(snapshot []progress.Update) {
	go c.writePump(snapshot)
	go c.readPump()
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		c.unsubscribe()
		c.conn.Close()
	})
}

// readPump only watches for the peer going away and answers pongs.
func (c *client) readPump() {
	defer c.close()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read failed", "error", err)
			}
			return
		}
	}
}

func (c *client) writePump(snapshot []progress.Update) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for _, u := range snapshot {
		if err := c.write(u); err != nil {
			return
		}
	}

	for {
		select {
		case u, ok := <-c.updates:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished"))
				return
			}
			if err := c.write(u); err != nil {
				c.logger.Debug("websocket write failed", "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) write(u progress.Update) error {
	data, err := json.Marshal(newTrackStatus(u))
	if err != nil {
		return err
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}
