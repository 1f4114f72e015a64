/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package cells

import (
	"encoding/json"
	"slices"
)

const (
	MaxStage   = 6
	MaxBullets = 5
)

type Phase string

const (
	PhaseLobby      Phase = "lobby"
	PhaseInProgress Phase = "in_progress"
	PhaseEnded      Phase = "ended"
)

// Cell is one numbered slot on a player's board. Stage 0 is inactive;
// bullets are only ever loaded at MaxStage.
type Cell struct {
	Stage    int  `json:"stage"`
	IsActive bool `json:"isActive"`
	Bullets  int  `json:"bullets"`
}

type Stats struct {
	ShotsFired    int `json:"shotsFired"`
	Eliminations  int `json:"eliminations"`
	TimesTargeted int `json:"timesTargeted"`
}

type GamePlayer struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Color      string `json:"color"`
	Eliminated bool   `json:"eliminated"`
	FirstMove  bool   `json:"firstMove"`
	Cells      []Cell `json:"cells"`
	Stats      Stats  `json:"stats"`
}

func (p *GamePlayer) allInactive() bool {
	for _, c := range p.Cells {
		if c.IsActive {
			return false
		}
	}

	return true
}

// GameState is the authoritative state of one match. Players keep the
// order and cardinality of the lobby roster for the life of the game.
type GameState struct {
	Phase         Phase        `json:"phase"`
	CurrentPlayer int          `json:"currentPlayer"`
	Players       []GamePlayer `json:"players"`
	LastRoll      *int         `json:"lastRoll"`
	Log           []LogEntry   `json:"gameLog"`
}

// NewGameState seats the roster in order, every cell inactive.
func NewGameState(roster []LobbyPlayer) *GameState {
	n := len(roster)

	players := make([]GamePlayer, 0, n)
	for _, lp := range roster {
		players = append(players, GamePlayer{
			ID:        lp.ID,
			Username:  lp.Username,
			Color:     lp.Color,
			FirstMove: true,
			Cells:     make([]Cell, n),
		})
	}

	return &GameState{
		Phase:   PhaseInProgress,
		Players: players,
		Log:     []LogEntry{},
	}
}

// Clone returns a deep copy safe to hand to another goroutine.
func (g *GameState) Clone() *GameState {
	if g == nil {
		return nil
	}

	c := *g
	c.Players = make([]GamePlayer, len(g.Players))
	for i, p := range g.Players {
		p.Cells = slices.Clone(p.Cells)
		c.Players[i] = p
	}
	if g.LastRoll != nil {
		v := *g.LastRoll
		c.LastRoll = &v
	}
	c.Log = slices.Clone(g.Log)

	return &c
}

// Size is the player count N fixed at game start.
func (g *GameState) Size() int {
	return len(g.Players)
}

func (g *GameState) Current() *GamePlayer {
	return &g.Players[g.CurrentPlayer]
}

func (g *GameState) remaining() []int {
	var alive []int
	for i := range g.Players {
		if !g.Players[i].Eliminated {
			alive = append(alive, i)
		}
	}

	return alive
}

type ActionKind string

const (
	ActionRoll  ActionKind = "roll"
	ActionShoot ActionKind = "shoot"
	ActionEmote ActionKind = "emote"
)

// Action is a single move by the current player. Only the fields relevant
// to Kind are read.
type Action struct {
	Kind         ActionKind
	Value        int
	TargetPlayer int
	TargetCell   int
	Message      string
}

type actionData struct {
	Value        int    `json:"value"`
	TargetPlayer int    `json:"targetPlayer"`
	TargetCell   int    `json:"targetCell"`
	Message      string `json:"message"`
}

// ParseAction decodes a gameAction payload. Malformed data yields an
// action the engine will refuse.
func ParseAction(kind string, data json.RawMessage) Action {
	var d actionData
	if len(data) > 0 {
		if err := json.Unmarshal(data, &d); err != nil {
			return Action{Kind: ActionKind(kind), Value: -1, TargetPlayer: -1, TargetCell: -1}
		}
	}

	return Action{
		Kind:         ActionKind(kind),
		Value:        d.Value,
		TargetPlayer: d.TargetPlayer,
		TargetCell:   d.TargetCell,
		Message:      d.Message,
	}
}

type Elimination struct {
	Eliminator string `json:"eliminator"`
	Eliminated string `json:"eliminated"`
}

// History is the end-of-game summary, rebuilt from the log.
type History struct {
	Winner       string           `json:"winner"`
	Eliminations []Elimination    `json:"eliminations"`
	PlayerStats  map[string]Stats `json:"playerStats"`
}

// Outcome reports what Apply did. Processed is false when the action was
// refused outright, in which case the state is untouched and the turn did
// not move.
type Outcome struct {
	Processed bool
	Ended     bool
	History   *History
}

// Apply runs one action for the current player. Callers are responsible
// for checking that the sender owns the turn.
func (g *GameState) Apply(a Action) Outcome {
	if g.Phase != PhaseInProgress {
		return Outcome{}
	}

	var ok bool
	switch a.Kind {
	case ActionRoll:
		ok = g.roll(a.Value)
	case ActionShoot:
		ok = g.shoot(a.TargetPlayer, a.TargetCell)
	case ActionEmote:
		ok = g.emote(a.Message)
	}
	if !ok {
		return Outcome{}
	}

	return g.endAction()
}

func (g *GameState) roll(value int) bool {
	if value < 1 || value > g.Size() {
		return false
	}

	v := value
	g.LastRoll = &v

	p := g.Current()
	if p.FirstMove {
		if value != 1 {
			g.Log = append(g.Log, FirstMoveEntry{Player: p.Username, Roll: value})

			return true
		}
		p.FirstMove = false
	}

	idx := value - 1
	cell := &p.Cells[idx]

	switch {
	case !cell.IsActive:
		*cell = Cell{Stage: 1, IsActive: true}
		g.Log = append(g.Log, ActivateEntry{Player: p.Username, Cell: idx})
	case cell.Stage < MaxStage:
		cell.Stage++
		if cell.Stage == MaxStage {
			cell.Bullets = MaxBullets
			g.Log = append(g.Log, MaxLevelEntry{Player: p.Username, Cell: idx})
		}
	case cell.Bullets == 0:
		cell.Bullets = MaxBullets
		g.Log = append(g.Log, ReloadEntry{Player: p.Username, Cell: idx})
	}

	return true
}

func (g *GameState) shoot(target, cellIdx int) bool {
	n := g.Size()
	if target < 0 || target >= n || cellIdx < 0 || cellIdx >= n {
		return false
	}

	shooter := g.Current()
	if target == g.CurrentPlayer || g.LastRoll == nil || *g.LastRoll != cellIdx+1 || shooter.Cells[cellIdx].Bullets <= 0 {
		// Aiming at yourself, a wrong roll or no ammo still costs the turn.
		return true
	}

	victim := &g.Players[target]
	victim.Cells[cellIdx] = Cell{}
	shooter.Cells[cellIdx].Bullets--
	shooter.Stats.ShotsFired++
	victim.Stats.TimesTargeted++
	g.Log = append(g.Log, ShootEntry{Shooter: shooter.Username, Target: victim.Username, Cell: cellIdx})

	wasEliminated := victim.Eliminated
	victim.Eliminated = victim.allInactive()
	if victim.Eliminated && !wasEliminated {
		shooter.Stats.Eliminations++
		g.Log = append(g.Log, EliminateEntry{Eliminator: shooter.Username, Eliminated: victim.Username})
	}

	return true
}

func (g *GameState) emote(message string) bool {
	g.Log = append(g.Log, EmoteEntry{Player: g.Current().Username, Message: message})

	return true
}

// endAction either finishes the game or passes the turn to the next
// player still standing.
func (g *GameState) endAction() Outcome {
	alive := g.remaining()
	if len(alive) == 1 {
		g.Phase = PhaseEnded

		return Outcome{
			Processed: true,
			Ended:     true,
			History:   g.history(g.Players[alive[0]].Username),
		}
	}

	g.advance()

	return Outcome{Processed: true}
}

func (g *GameState) advance() {
	n := g.Size()
	for i := 1; i <= n; i++ {
		next := (g.CurrentPlayer + i) % n
		if !g.Players[next].Eliminated {
			g.CurrentPlayer = next

			return
		}
	}
}

// Forfeit removes a departing player from contention. Nobody is credited
// with the elimination. The turn moves on if it was theirs.
func (g *GameState) Forfeit(id string) Outcome {
	if g.Phase != PhaseInProgress {
		return Outcome{}
	}

	idx := slices.IndexFunc(g.Players, func(p GamePlayer) bool { return p.ID == id })
	if idx < 0 || g.Players[idx].Eliminated {
		return Outcome{}
	}

	p := &g.Players[idx]
	for i := range p.Cells {
		p.Cells[i] = Cell{}
	}
	p.Eliminated = true
	g.Log = append(g.Log, ForfeitEntry{Player: p.Username})

	alive := g.remaining()
	if len(alive) <= 1 {
		g.Phase = PhaseEnded

		winner := ""
		if len(alive) == 1 {
			winner = g.Players[alive[0]].Username
		}

		return Outcome{Processed: true, Ended: true, History: g.history(winner)}
	}

	if idx == g.CurrentPlayer {
		g.advance()
	}

	return Outcome{Processed: true}
}

func (g *GameState) history(winner string) *History {
	h := &History{
		Winner:       winner,
		Eliminations: []Elimination{},
		PlayerStats:  make(map[string]Stats, len(g.Players)),
	}

	for _, e := range g.Log {
		if el, ok := e.(EliminateEntry); ok {
			h.Eliminations = append(h.Eliminations, Elimination(el))
		}
	}

	for _, p := range g.Players {
		h.PlayerStats[p.Username] = p.Stats
	}

	return h
}
