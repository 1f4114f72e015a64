/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package cells

import "slices"

const (
	MinPlayers = 2
	MaxPlayers = 6
)

type LobbyPlayer struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Ready    bool   `json:"ready"`
	IsLeader bool   `json:"isLeader"`
	Color    string `json:"color"`
}

// Room is one lobby and, once started, its game. The password is kept
// server-side only.
type Room struct {
	Code         string        `json:"roomCode"`
	Leader       string        `json:"leader"`
	MaxPlayers   int           `json:"maxPlayers"`
	Password     string        `json:"-"`
	HasPassword  bool          `json:"hasPassword"`
	IsQuickMatch bool          `json:"isQuickMatch"`
	Started      bool          `json:"started"`
	Players      []LobbyPlayer `json:"players"`
	Game         *GameState    `json:"gameState,omitempty"`

	joined int // players ever seated, for color assignment
}

func newRoom(code string, maxPlayers int, password string, quick bool) *Room {
	return &Room{
		Code:         code,
		MaxPlayers:   maxPlayers,
		Password:     password,
		HasPassword:  password != "",
		IsQuickMatch: quick,
		Players:      []LobbyPlayer{},
	}
}

func (r *Room) index(id string) int {
	return slices.IndexFunc(r.Players, func(p LobbyPlayer) bool { return p.ID == id })
}

func (r *Room) full() bool {
	return len(r.Players) >= r.MaxPlayers
}

func (r *Room) add(id, username string, ready bool) *LobbyPlayer {
	r.Players = append(r.Players, LobbyPlayer{
		ID:       id,
		Username: username,
		Ready:    ready,
		IsLeader: len(r.Players) == 0,
		Color:    ColorFor(r.joined),
	})
	r.joined++
	if len(r.Players) == 1 {
		r.Leader = id
	}

	return &r.Players[len(r.Players)-1]
}

// remove drops the player and hands leadership to the next player in
// roster order when the leader leaves.
func (r *Room) remove(id string) (LobbyPlayer, bool) {
	i := r.index(id)
	if i < 0 {
		return LobbyPlayer{}, false
	}

	gone := r.Players[i]
	r.Players = slices.Delete(r.Players, i, i+1)

	if gone.IsLeader {
		r.Leader = ""
		if len(r.Players) > 0 {
			next := i % len(r.Players)
			r.Players[next].IsLeader = true
			r.Leader = r.Players[next].ID
		}
	}

	return gone, true
}

func (r *Room) allReady() bool {
	for _, p := range r.Players {
		if !p.Ready {
			return false
		}
	}

	return true
}

func (r *Room) start() {
	r.Started = true
	r.Game = NewGameState(r.Players)
}

// InProgress reports whether actions are currently being accepted.
func (r *Room) InProgress() bool {
	return r.Started && r.Game != nil && r.Game.Phase == PhaseInProgress
}

func (r *Room) memberIDs() []string {
	ids := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		ids = append(ids, p.ID)
	}

	return ids
}

// Snapshot deep-copies the room for delivery outside the directory lock.
func (r *Room) Snapshot() *Room {
	c := *r
	c.Players = slices.Clone(r.Players)
	c.Game = r.Game.Clone()

	return &c
}
