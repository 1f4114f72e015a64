/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package cells

import "encoding/json"

// Handle routes one client event to its operation and returns every push
// that results, including an error push for the sender when the request
// was refused. Malformed or unknown events produce nothing.
func (d *Directory) Handle(conn string, msg ClientMessage) []Delivery {
	var (
		out []Delivery
		err error
	)

	switch msg.Type {
	case EventQuickMatch:
		var data quickMatchData
		if !decode(msg.Data, &data) {
			return nil
		}
		out, err = d.QuickMatch(conn, data.Username)
	case EventCreateRoom:
		var data createRoomData
		if !decode(msg.Data, &data) {
			return nil
		}
		out, err = d.CreateRoom(conn, data.MaxPlayers, data.Password, data.Username)
	case EventJoinRoom:
		var data joinRoomData
		if !decode(msg.Data, &data) {
			return nil
		}
		out, err = d.JoinRoom(conn, data.RoomCode, data.Password, data.Username)
	case EventToggleReady:
		var data roomData
		if !decode(msg.Data, &data) {
			return nil
		}
		out = d.ToggleReady(conn, data.RoomCode)
	case EventStartGame:
		var data roomData
		if !decode(msg.Data, &data) {
			return nil
		}
		out, err = d.StartGame(conn, data.RoomCode)
	case EventGameAction:
		var data gameActionData
		if !decode(msg.Data, &data) {
			return nil
		}
		out = d.GameAction(conn, data.RoomCode, data.ActionKind, data.Data)
	case EventSendEmote:
		var data emoteData
		if !decode(msg.Data, &data) {
			return nil
		}
		out = d.SendEmote(conn, data.RoomCode, data.Message)
	case EventLeaveRoom:
		out = d.Leave(conn)
	}

	if err != nil {
		return append(out, errorDelivery(conn, err))
	}

	return out
}

// Disconnect is a leave issued by the transport.
func (d *Directory) Disconnect(conn string) []Delivery {
	return d.Leave(conn)
}

func decode(raw json.RawMessage, v any) bool {
	if len(raw) == 0 {
		return true
	}

	return json.Unmarshal(raw, v) == nil
}
