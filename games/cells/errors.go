/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package cells

import "errors"

// Recoverable errors reported to the requesting connection only.
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrRoomFull           = errors.New("room is full")
	ErrGameAlreadyStarted = errors.New("game has already started")
	ErrNotAuthorized      = errors.New("only the room leader can do that")
	ErrNotReady           = errors.New("every player must be ready before the game can start")
	ErrNotEnoughPlayers   = errors.New("at least two players are needed to start")
	ErrInvalidRoomSize    = errors.New("rooms hold between 2 and 6 players")
	ErrInvalidUsername    = errors.New("please choose a valid username")
)
