/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package cells

import "encoding/json"

// Inbound event names.
const (
	EventQuickMatch  = "quickMatch"
	EventCreateRoom  = "createRoom"
	EventJoinRoom    = "joinRoom"
	EventToggleReady = "toggleReady"
	EventStartGame   = "startGame"
	EventGameAction  = "gameAction"
	EventSendEmote   = "sendEmote"
	EventLeaveRoom   = "leaveRoom"
)

// Outbound push names.
const (
	PushRoomCreated      = "roomCreated"
	PushPlayerJoined     = "playerJoined"
	PushRoomUpdated      = "roomUpdated"
	PushPlayerLeft       = "playerLeft"
	PushGameStarted      = "gameStarted"
	PushGameStateUpdated = "gameStateUpdated"
	PushGameEnded        = "gameEnded"
	PushEmote            = "emote"
	PushError            = "error"
)

// ClientMessage is the envelope every client event arrives in.
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type createRoomData struct {
	MaxPlayers int    `json:"maxPlayers"`
	Password   string `json:"password,omitempty"`
	Username   string `json:"username"`
}

type joinRoomData struct {
	RoomCode string `json:"roomCode"`
	Password string `json:"password,omitempty"`
	Username string `json:"username"`
}

type quickMatchData struct {
	Username string `json:"username"`
}

type roomData struct {
	RoomCode string `json:"roomCode"`
}

type gameActionData struct {
	RoomCode   string          `json:"roomCode"`
	ActionKind string          `json:"actionKind"`
	Data       json.RawMessage `json:"data,omitempty"`
}

type emoteData struct {
	RoomCode string `json:"roomCode"`
	Message  string `json:"message"`
}

// Push is a single server-to-client message.
type Push struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Delivery pairs a push with the connections that should receive it.
type Delivery struct {
	To   []string
	Push Push
}

type RoomPayload struct {
	Room *Room `json:"room"`
}

type PlayerPayload struct {
	Room   *Room       `json:"room"`
	Player LobbyPlayer `json:"player"`
}

type GamePayload struct {
	RoomCode  string     `json:"roomCode"`
	GameState *GameState `json:"gameState"`
}

type GameEndedPayload struct {
	RoomCode  string     `json:"roomCode"`
	GameState *GameState `json:"gameState"`
	History   *History   `json:"history"`
}

type EmotePayload struct {
	RoomCode string `json:"roomCode"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func errorDelivery(to string, err error) Delivery {
	return Delivery{
		To:   []string{to},
		Push: Push{Type: PushError, Data: ErrorPayload{Message: err.Error()}},
	}
}
