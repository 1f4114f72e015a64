// Cellshot websocket transport
//
// Every browser tab holds one websocket at $prefix/ws. The connection gets a
// random id for its lifetime; closing the socket is the same as leaving the
// room. Clients send {"type": <event>, "data": {...}} and receive pushes in
// the same envelope.
//
// Routes:
//   - $prefix/ws              → event socket
//   - $prefix/rooms           → JSON list of joinable rooms
//   - $prefix/room/:code/qr   → PNG QR code inviting to a room

package main

import (
	"net/http"
	"sync"
	"time"

	"github.com/Seednode/cellshot/games/cells"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

type Client struct {
	id   string
	conn *websocket.Conn
	send chan cells.Push
}

// Hub routes deliveries to live connections. Handling an event and fanning
// out its pushes happen under one lock, so every client sees pushes in the
// order the directory produced them.
type Hub struct {
	mu      sync.Mutex
	dir     *cells.Directory
	clients map[string]*Client
}

func newHub(dir *cells.Directory) *Hub {
	return &Hub{
		dir:     dir,
		clients: make(map[string]*Client),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c.id] = c
}

// unregister drops the client and leaves its room, if any.
func (h *Hub) unregister(cfg *Config, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropLocked(c)

	code, seated := h.dir.RoomOf(c.id)

	out := h.dir.Disconnect(c.id)
	if seated {
		logf(cfg, "ROOMS: Connection %s left room %s", c.id, code)
	}

	h.deliverLocked(cfg, out)
}

func (h *Hub) handle(cfg *Config, c *Client, msg cells.ClientMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := h.dir.Handle(c.id, msg)

	h.deliverLocked(cfg, out)
}

func (h *Hub) dropLocked(c *Client) {
	if current, ok := h.clients[c.id]; ok && current == c {
		delete(h.clients, c.id)
		close(c.send)
	}
}

func (h *Hub) deliverLocked(cfg *Config, out []cells.Delivery) {
	for _, d := range out {
		logPush(cfg, d)

		for _, id := range d.To {
			client, ok := h.clients[id]
			if !ok {
				continue
			}

			select {
			case client.send <- d.Push:
			default:
				logf(cfg, "ERROR: Dropping slow connection %s", id)
				h.dropLocked(client)
			}
		}
	}
}

func logPush(cfg *Config, d cells.Delivery) {
	switch data := d.Push.Data.(type) {
	case cells.RoomPayload:
		if d.Push.Type == cells.PushRoomCreated {
			logf(cfg, "ROOMS: Created room %s (max %d players)", data.Room.Code, data.Room.MaxPlayers)
		}
	case cells.PlayerPayload:
		if d.Push.Type == cells.PushPlayerJoined {
			logf(cfg, "ROOMS: Player %q joined %s", data.Player.Username, data.Room.Code)
		}
	case cells.GamePayload:
		if d.Push.Type == cells.PushGameStarted {
			logf(cfg, "GAMES: Started game in %s with %d players", data.RoomCode, data.GameState.Size())
		}
	case cells.GameEndedPayload:
		logf(cfg, "GAMES: %q won in %s", data.History.Winner, data.RoomCode)
	case cells.ErrorPayload:
		logf(cfg, "ROOMS: Refused request from %v: %s", d.To, data.Message)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func serveWS(cfg *Config, hub *Hub, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			errs <- err

			return
		}

		client := &Client{
			id:   uuid.NewString(),
			conn: conn,
			send: make(chan cells.Push, sendBuffer),
		}

		hub.register(client)

		logf(cfg, "SERVE: Connection %s opened from %s", client.id, realIP(r))

		go client.writePump()
		client.readPump(cfg, hub)
	}
}

func (c *Client) readPump(cfg *Config, h *Hub) {
	defer func() {
		h.unregister(cfg, c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg cells.ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		h.handle(cfg, c, msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})

				return
			}

			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// serveRoomQR renders a PNG QR code pointing at the invite URL for a room.
func serveRoomQR(cfg *Config, dir *cells.Directory) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		code := ps.ByName("code")

		if _, ok := dir.Room(code); !ok {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		url := scheme + "://" + r.Host + cfg.prefix + "/?room=" + code

		const qrSize = 320
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)
		_, _ = w.Write(png)
	}
}

func registerCellGame(cfg *Config, dir *cells.Directory, mux *httprouter.Router, errs chan<- error) {
	hub := newHub(dir)

	mux.GET(cfg.prefix+"/ws", serveWS(cfg, hub, errs))

	mux.GET(cfg.prefix+"/room/:code/qr", serveRoomQR(cfg, dir))
}
