/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package cells

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"
)

const (
	DefaultCodeDigits     = 6
	DefaultQuickMatchSize = 4
	DefaultMaxUsername    = 20
)

// Directory owns every room in the process and the connection -> room
// registry. All operations run under one lock, so each handler observes
// and leaves behind a consistent view of every room.
type Directory struct {
	mu      sync.Mutex
	rooms   map[string]*Room
	order   []string          // room codes in creation order
	members map[string]string // connection id -> room code

	codeDigits     int
	quickMatchSize int
	maxUsername    int
	newCode        func() string
	roller         func(n int) int
	forfeitOnLeave bool
}

type Option func(*Directory)

func WithCodeDigits(n int) Option {
	return func(d *Directory) { d.codeDigits = n }
}

func WithQuickMatchSize(n int) Option {
	return func(d *Directory) { d.quickMatchSize = n }
}

func WithMaxUsername(n int) Option {
	return func(d *Directory) { d.maxUsername = n }
}

// WithCodeSource replaces the random room code generator.
func WithCodeSource(f func() string) Option {
	return func(d *Directory) { d.newCode = f }
}

// WithServerRolls makes the server pick every die value, ignoring the
// value a client submits. A nil roller uses crypto/rand.
func WithServerRolls(roller func(n int) int) Option {
	return func(d *Directory) {
		if roller == nil {
			roller = CryptoRoll
		}
		d.roller = roller
	}
}

// WithForfeitOnLeave eliminates players who leave a running game. Without
// it, leaving only updates the roster and the game is left as it was.
func WithForfeitOnLeave() Option {
	return func(d *Directory) { d.forfeitOnLeave = true }
}

func NewDirectory(opts ...Option) *Directory {
	d := &Directory{
		rooms:          make(map[string]*Room),
		members:        make(map[string]string),
		codeDigits:     DefaultCodeDigits,
		quickMatchSize: DefaultQuickMatchSize,
		maxUsername:    DefaultMaxUsername,
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.newCode == nil {
		d.newCode = func() string { return randomCode(d.codeDigits) }
	}

	return d
}

func randomCode(digits int) string {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)

	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		panic("crypto/rand failure: " + err.Error())
	}

	return fmt.Sprintf("%0*d", digits, n)
}

// CryptoRoll returns a uniform die value in 1..n.
func CryptoRoll(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("crypto/rand failure: " + err.Error())
	}

	return int(v.Int64()) + 1
}

// generateCodeLocked draws codes until one is not in use.
func (d *Directory) generateCodeLocked() string {
	for {
		code := d.newCode()
		if _, exists := d.rooms[code]; !exists {
			return code
		}
	}
}

func (d *Directory) cleanUsername(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > d.maxUsername {
		return "", ErrInvalidUsername
	}

	return name, nil
}

func (d *Directory) insertLocked(room *Room) {
	d.rooms[room.Code] = room
	d.order = append(d.order, room.Code)
}

func (d *Directory) deleteLocked(code string) {
	delete(d.rooms, code)
	d.order = slices.DeleteFunc(d.order, func(c string) bool { return c == code })
}

func broadcast(room *Room, typ string, data any) Delivery {
	return Delivery{To: room.memberIDs(), Push: Push{Type: typ, Data: data}}
}

func gameStarted(room *Room) Delivery {
	return broadcast(room, PushGameStarted, GamePayload{RoomCode: room.Code, GameState: room.Game.Clone()})
}

// CreateRoom seats the requester as sole player and leader of a new room.
func (d *Directory) CreateRoom(conn string, maxPlayers int, password, username string) ([]Delivery, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	name, err := d.cleanUsername(username)
	if err != nil {
		return nil, err
	}
	if maxPlayers < MinPlayers || maxPlayers > MaxPlayers {
		return nil, ErrInvalidRoomSize
	}

	out := d.leaveLocked(conn)

	room := newRoom(d.generateCodeLocked(), maxPlayers, password, false)
	room.add(conn, name, false)
	d.insertLocked(room)
	d.members[conn] = room.Code

	return append(out, Delivery{
		To:   []string{conn},
		Push: Push{Type: PushRoomCreated, Data: RoomPayload{Room: room.Snapshot()}},
	}), nil
}

// JoinRoom appends the requester to an existing, unstarted room.
func (d *Directory) JoinRoom(conn, code, password, username string) ([]Delivery, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	name, err := d.cleanUsername(username)
	if err != nil {
		return nil, err
	}

	room, ok := d.rooms[code]
	switch {
	case !ok:
		return nil, ErrRoomNotFound
	case room.index(conn) >= 0:
		return nil, nil
	case room.Password != "" && room.Password != password:
		return nil, ErrInvalidPassword
	case room.full():
		return nil, ErrRoomFull
	case room.Started:
		return nil, ErrGameAlreadyStarted
	}

	out := d.leaveLocked(conn)

	player := room.add(conn, name, false)
	d.members[conn] = code

	return append(out, broadcast(room, PushPlayerJoined, PlayerPayload{Room: room.Snapshot(), Player: *player})), nil
}

// QuickMatch joins the oldest open quick-match room, starting it when it
// fills, or opens a new one.
func (d *Directory) QuickMatch(conn, username string) ([]Delivery, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	name, err := d.cleanUsername(username)
	if err != nil {
		return nil, err
	}

	out := d.leaveLocked(conn)

	for _, code := range d.order {
		room := d.rooms[code]
		if !room.IsQuickMatch || room.Started || room.full() {
			continue
		}

		player := room.add(conn, name, true)
		d.members[conn] = code
		out = append(out, broadcast(room, PushPlayerJoined, PlayerPayload{Room: room.Snapshot(), Player: *player}))

		if room.full() {
			room.start()
			out = append(out, gameStarted(room))
		}

		return out, nil
	}

	room := newRoom(d.generateCodeLocked(), d.quickMatchSize, "", true)
	room.add(conn, name, true)
	d.insertLocked(room)
	d.members[conn] = room.Code

	return append(out, Delivery{
		To:   []string{conn},
		Push: Push{Type: PushRoomCreated, Data: RoomPayload{Room: room.Snapshot()}},
	}), nil
}

// Leave removes the connection from whatever room it is in.
func (d *Directory) Leave(conn string) []Delivery {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.leaveLocked(conn)
}

func (d *Directory) leaveLocked(conn string) []Delivery {
	code, ok := d.members[conn]
	if !ok {
		return nil
	}
	delete(d.members, conn)

	room, ok := d.rooms[code]
	if !ok {
		return nil
	}

	gone, ok := room.remove(conn)
	if !ok {
		return nil
	}

	if len(room.Players) == 0 {
		d.deleteLocked(code)

		return nil
	}

	out := []Delivery{broadcast(room, PushPlayerLeft, PlayerPayload{Room: room.Snapshot(), Player: gone})}

	if d.forfeitOnLeave && room.InProgress() {
		res := room.Game.Forfeit(conn)
		if res.Processed {
			out = append(out, d.gameDeliveries(room, res)...)
		}
	}

	return out
}

// ToggleReady flips the requester's ready flag while the room is in the lobby.
func (d *Directory) ToggleReady(conn, code string) []Delivery {
	d.mu.Lock()
	defer d.mu.Unlock()

	room, ok := d.rooms[code]
	if !ok || room.Started {
		return nil
	}

	i := room.index(conn)
	if i < 0 {
		return nil
	}
	room.Players[i].Ready = !room.Players[i].Ready

	return []Delivery{broadcast(room, PushRoomUpdated, RoomPayload{Room: room.Snapshot()})}
}

// StartGame moves the room from lobby to in progress. Only the leader may
// start, and only once everyone is ready.
func (d *Directory) StartGame(conn, code string) ([]Delivery, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	room, ok := d.rooms[code]
	if !ok || room.index(conn) < 0 {
		return nil, nil
	}

	switch {
	case room.Leader != conn:
		return nil, ErrNotAuthorized
	case room.Started:
		return nil, ErrGameAlreadyStarted
	case !room.allReady():
		return nil, ErrNotReady
	case len(room.Players) < MinPlayers:
		return nil, ErrNotEnoughPlayers
	}

	room.start()

	return []Delivery{gameStarted(room)}, nil
}

// GameAction applies one move for the player whose turn it is. Anything
// else is dropped without a reply.
func (d *Directory) GameAction(conn, code, kind string, data json.RawMessage) []Delivery {
	d.mu.Lock()
	defer d.mu.Unlock()

	room, ok := d.rooms[code]
	if !ok || !room.InProgress() {
		return nil
	}

	game := room.Game
	if game.Current().ID != conn {
		return nil
	}

	action := ParseAction(kind, data)
	if action.Kind == ActionRoll && d.roller != nil {
		action.Value = d.roller(game.Size())
	}

	res := game.Apply(action)
	if !res.Processed {
		return nil
	}

	return d.gameDeliveries(room, res)
}

func (d *Directory) gameDeliveries(room *Room, res Outcome) []Delivery {
	state := room.Game.Clone()

	out := []Delivery{broadcast(room, PushGameStateUpdated, GamePayload{RoomCode: room.Code, GameState: state})}
	if res.Ended {
		out = append(out, broadcast(room, PushGameEnded, GameEndedPayload{
			RoomCode:  room.Code,
			GameState: state,
			History:   res.History,
		}))
	}

	return out
}

// SendEmote relays a chat line to the room without touching game state.
func (d *Directory) SendEmote(conn, code, message string) []Delivery {
	d.mu.Lock()
	defer d.mu.Unlock()

	room, ok := d.rooms[code]
	if !ok {
		return nil
	}

	i := room.index(conn)
	if i < 0 || strings.TrimSpace(message) == "" {
		return nil
	}

	return []Delivery{broadcast(room, PushEmote, EmotePayload{
		RoomCode: code,
		Username: room.Players[i].Username,
		Message:  message,
	})}
}

// Room returns a snapshot of the room with the given code.
func (d *Directory) Room(code string) (*Room, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	room, ok := d.rooms[code]
	if !ok {
		return nil, false
	}

	return room.Snapshot(), true
}

// RoomOf returns the code of the room the connection is seated in.
func (d *Directory) RoomOf(conn string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	code, ok := d.members[conn]

	return code, ok
}

type RoomSummary struct {
	Code         string `json:"roomCode"`
	Players      int    `json:"players"`
	MaxPlayers   int    `json:"maxPlayers"`
	HasPassword  bool   `json:"hasPassword"`
	IsQuickMatch bool   `json:"isQuickMatch"`
}

// OpenRooms lists rooms still accepting players, oldest first.
func (d *Directory) OpenRooms() []RoomSummary {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := []RoomSummary{}
	for _, code := range d.order {
		room := d.rooms[code]
		if room.Started || room.full() {
			continue
		}

		out = append(out, RoomSummary{
			Code:         code,
			Players:      len(room.Players),
			MaxPlayers:   room.MaxPlayers,
			HasPassword:  room.HasPassword,
			IsQuickMatch: room.IsQuickMatch,
		})
	}

	return out
}

// Len returns the number of live rooms.
func (d *Directory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.rooms)
}
