/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package cells

import (
	"encoding/json"
	"fmt"
)

type LogKind string

const (
	KindFirstMove LogKind = "firstMove"
	KindActivate  LogKind = "activate"
	KindMaxLevel  LogKind = "maxLevel"
	KindReload    LogKind = "reload"
	KindShoot     LogKind = "shoot"
	KindEliminate LogKind = "eliminate"
	KindEmote     LogKind = "emote"
	KindForfeit   LogKind = "forfeit"
)

// LogEntry is one immutable record in a game's log. The set of
// implementations is closed; the unexported method keeps it that way.
type LogEntry interface {
	Kind() LogKind
	Text() string

	logEntry()
}

// FirstMoveEntry records a roll that did not count because the player
// has not rolled a 1 yet.
type FirstMoveEntry struct {
	Player string `json:"player"`
	Roll   int    `json:"roll"`
}

type ActivateEntry struct {
	Player string `json:"player"`
	Cell   int    `json:"cell"`
}

type MaxLevelEntry struct {
	Player string `json:"player"`
	Cell   int    `json:"cell"`
}

type ReloadEntry struct {
	Player string `json:"player"`
	Cell   int    `json:"cell"`
}

type ShootEntry struct {
	Shooter string `json:"shooter"`
	Target  string `json:"target"`
	Cell    int    `json:"cell"`
}

type EliminateEntry struct {
	Eliminator string `json:"eliminator"`
	Eliminated string `json:"eliminated"`
}

type EmoteEntry struct {
	Player  string `json:"player"`
	Message string `json:"message"`
}

// ForfeitEntry records a player who walked out of a running game.
type ForfeitEntry struct {
	Player string `json:"player"`
}

func (FirstMoveEntry) Kind() LogKind { return KindFirstMove }
func (ActivateEntry) Kind() LogKind  { return KindActivate }
func (MaxLevelEntry) Kind() LogKind  { return KindMaxLevel }
func (ReloadEntry) Kind() LogKind    { return KindReload }
func (ShootEntry) Kind() LogKind     { return KindShoot }
func (EliminateEntry) Kind() LogKind { return KindEliminate }
func (EmoteEntry) Kind() LogKind     { return KindEmote }
func (ForfeitEntry) Kind() LogKind   { return KindForfeit }

func (FirstMoveEntry) logEntry() {}
func (ActivateEntry) logEntry()  {}
func (MaxLevelEntry) logEntry()  {}
func (ReloadEntry) logEntry()    {}
func (ShootEntry) logEntry()     {}
func (EliminateEntry) logEntry() {}
func (EmoteEntry) logEntry()     {}
func (ForfeitEntry) logEntry()   {}

// Cell numbers in log text are 1-based, matching the die.

func (e FirstMoveEntry) Text() string {
	return fmt.Sprintf("%s rolled a %d but needs a 1 to get started.", e.Player, e.Roll)
}

func (e ActivateEntry) Text() string {
	return fmt.Sprintf("%s activated cell %d.", e.Player, e.Cell+1)
}

func (e MaxLevelEntry) Text() string {
	return fmt.Sprintf("%s maxed out cell %d and loaded %d bullets.", e.Player, e.Cell+1, MaxBullets)
}

func (e ReloadEntry) Text() string {
	return fmt.Sprintf("%s reloaded cell %d.", e.Player, e.Cell+1)
}

func (e ShootEntry) Text() string {
	return fmt.Sprintf("%s shot %s's cell %d.", e.Shooter, e.Target, e.Cell+1)
}

func (e EliminateEntry) Text() string {
	return fmt.Sprintf("%s eliminated %s!", e.Eliminator, e.Eliminated)
}

func (e EmoteEntry) Text() string {
	return fmt.Sprintf("%s: %s", e.Player, e.Message)
}

func (e ForfeitEntry) Text() string {
	return fmt.Sprintf("%s left the game.", e.Player)
}

func (e FirstMoveEntry) MarshalJSON() ([]byte, error) {
	type plain FirstMoveEntry
	return marshalEntry(e, plain(e))
}

func (e ActivateEntry) MarshalJSON() ([]byte, error) {
	type plain ActivateEntry
	return marshalEntry(e, plain(e))
}

func (e MaxLevelEntry) MarshalJSON() ([]byte, error) {
	type plain MaxLevelEntry
	return marshalEntry(e, plain(e))
}

func (e ReloadEntry) MarshalJSON() ([]byte, error) {
	type plain ReloadEntry
	return marshalEntry(e, plain(e))
}

func (e ShootEntry) MarshalJSON() ([]byte, error) {
	type plain ShootEntry
	return marshalEntry(e, plain(e))
}

func (e EliminateEntry) MarshalJSON() ([]byte, error) {
	type plain EliminateEntry
	return marshalEntry(e, plain(e))
}

func (e EmoteEntry) MarshalJSON() ([]byte, error) {
	type plain EmoteEntry
	return marshalEntry(e, plain(e))
}

func (e ForfeitEntry) MarshalJSON() ([]byte, error) {
	type plain ForfeitEntry
	return marshalEntry(e, plain(e))
}

// marshalEntry flattens the variant's own fields next to the type tag and
// the rendered text. fields must not implement json.Marshaler.
func marshalEntry(e LogEntry, fields any) ([]byte, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}

	out := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}

	kind, _ := json.Marshal(e.Kind())
	text, _ := json.Marshal(e.Text())
	out["type"] = kind
	out["text"] = text

	return json.Marshal(out)
}
