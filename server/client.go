package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/stockfeed/hub"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 50 * time.Second
	maxMessageSize = 512
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// joinRequest is the only inbound message: a client names a ticker
// topic to join and subsequently receives pushed price updates with no
// request/response correlation.
type joinRequest struct {
	Action string `json:"action"`
	Ticker string `json:"ticker"`
}

const actionJoin = "join"

type wsClient struct {
	conn *websocket.Conn
	hub  *hub.Hub
	send chan hub.PriceUpdate
	log  *logrus.Logger
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	c := &wsClient{
		conn: conn,
		hub:  s.hub,
		send: make(chan hub.PriceUpdate, sendBuffer),
		log:  s.log,
	}

	go c.writePump()
	go c.readPump()
}

func (c *wsClient) ID() string { return c.conn.RemoteAddr().String() }

// Send queues an update without blocking the publisher. When the buffer
// is full the update is dropped; delivery is best-effort.
func (c *wsClient) Send(update hub.PriceUpdate) {
	select {
	case c.send <- update:
	default:
	}
}

func (c *wsClient) readPump() {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var req joinRequest
		if err := c.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.WithField("conn", c.ID()).WithError(err).Debug("read failed")
			}
			return
		}

		if req.Action != actionJoin || req.Ticker == "" {
			continue
		}
		c.hub.Subscribe(c, req.Ticker)
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case update := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(update); err != nil {
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
