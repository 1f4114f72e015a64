/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package cells

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGame(names ...string) *GameState {
	roster := make([]LobbyPlayer, 0, len(names))
	for i, name := range names {
		roster = append(roster, LobbyPlayer{ID: "conn-" + name, Username: name, Color: ColorFor(i)})
	}

	return NewGameState(roster)
}

func intPtr(v int) *int {
	return &v
}

func loaded() Cell {
	return Cell{Stage: MaxStage, IsActive: true, Bullets: MaxBullets}
}

func active() Cell {
	return Cell{Stage: 1, IsActive: true}
}

// play asserts whose turn it is before applying the action.
func play(t *testing.T, g *GameState, player int, a Action) Outcome {
	t.Helper()
	require.Equal(t, player, g.CurrentPlayer, "unexpected turn owner")

	return g.Apply(a)
}

func kinds(g *GameState) []LogKind {
	out := make([]LogKind, 0, len(g.Log))
	for _, e := range g.Log {
		out = append(out, e.Kind())
	}

	return out
}

func TestNewGameState(t *testing.T) {
	g := newGame("A", "B", "C")

	assert.Equal(t, PhaseInProgress, g.Phase)
	assert.Equal(t, 0, g.CurrentPlayer)
	assert.Nil(t, g.LastRoll)
	assert.Empty(t, g.Log)
	require.Len(t, g.Players, 3)

	for _, p := range g.Players {
		assert.True(t, p.FirstMove)
		assert.False(t, p.Eliminated)
		assert.Equal(t, Stats{}, p.Stats)
		require.Len(t, p.Cells, 3)
		for _, c := range p.Cells {
			assert.Equal(t, Cell{}, c)
		}
	}
}

func TestRollBeforeFirstOneDoesNothing(t *testing.T) {
	g := newGame("A", "B", "C")

	res := play(t, g, 0, Action{Kind: ActionRoll, Value: 3})

	assert.True(t, res.Processed)
	assert.False(t, res.Ended)
	assert.True(t, g.Players[0].FirstMove)
	assert.Equal(t, make([]Cell, 3), g.Players[0].Cells)
	require.NotNil(t, g.LastRoll)
	assert.Equal(t, 3, *g.LastRoll)
	assert.Equal(t, []LogKind{KindFirstMove}, kinds(g))
	assert.Equal(t, 1, g.CurrentPlayer)
}

func TestRollProgressesCellToMaxLevel(t *testing.T) {
	g := newGame("A", "B")

	play(t, g, 0, Action{Kind: ActionRoll, Value: 1})
	assert.False(t, g.Players[0].FirstMove)
	assert.Equal(t, active(), g.Players[0].Cells[0])

	for stage := 2; stage <= MaxStage; stage++ {
		play(t, g, 1, Action{Kind: ActionRoll, Value: 2})
		play(t, g, 0, Action{Kind: ActionRoll, Value: 1})
		assert.Equal(t, stage, g.Players[0].Cells[0].Stage)
	}

	assert.Equal(t, loaded(), g.Players[0].Cells[0])
	assert.Equal(t, 1, countKind(g, KindMaxLevel))
	assert.Equal(t, 1, countKind(g, KindActivate))
	assert.True(t, g.Players[1].FirstMove, "B never rolled a 1")
	assert.Equal(t, make([]Cell, 2), g.Players[1].Cells)

	// A fully loaded cell ignores further rolls.
	before := len(g.Log)
	play(t, g, 1, Action{Kind: ActionRoll, Value: 2})
	before++
	play(t, g, 0, Action{Kind: ActionRoll, Value: 1})
	assert.Equal(t, loaded(), g.Players[0].Cells[0])
	assert.Len(t, g.Log, before)
}

func countKind(g *GameState, kind LogKind) int {
	n := 0
	for _, e := range g.Log {
		if e.Kind() == kind {
			n++
		}
	}

	return n
}

func TestRollReloadsEmptyMaxCell(t *testing.T) {
	g := newGame("A", "B")
	g.Players[0].FirstMove = false
	g.Players[0].Cells[1] = Cell{Stage: MaxStage, IsActive: true}

	play(t, g, 0, Action{Kind: ActionRoll, Value: 2})

	assert.Equal(t, loaded(), g.Players[0].Cells[1])
	assert.Equal(t, []LogKind{KindReload}, kinds(g))
}

func TestRollOutOfRangeIsRefused(t *testing.T) {
	for _, v := range []int{0, -1, 4} {
		g := newGame("A", "B", "C")
		before := g.Clone()

		res := g.Apply(Action{Kind: ActionRoll, Value: v})

		assert.False(t, res.Processed, "roll %d", v)
		assert.Equal(t, before, g)
	}
}

func TestShootHitsMatchingCell(t *testing.T) {
	g := newGame("A", "B")
	g.Players[0].FirstMove = false
	g.Players[0].Cells[1] = loaded()
	g.Players[1].Cells[0] = active()
	g.Players[1].Cells[1] = Cell{Stage: 3, IsActive: true}
	g.LastRoll = intPtr(2)

	res := play(t, g, 0, Action{Kind: ActionShoot, TargetPlayer: 1, TargetCell: 1})

	assert.True(t, res.Processed)
	assert.False(t, res.Ended)
	assert.Equal(t, Cell{}, g.Players[1].Cells[1])
	assert.Equal(t, MaxBullets-1, g.Players[0].Cells[1].Bullets)
	assert.Equal(t, 1, g.Players[0].Stats.ShotsFired)
	assert.Equal(t, 1, g.Players[1].Stats.TimesTargeted)
	assert.False(t, g.Players[1].Eliminated)
	assert.Equal(t, []LogKind{KindShoot}, kinds(g))
	assert.Equal(t, ShootEntry{Shooter: "A", Target: "B", Cell: 1}, g.Log[0])
	assert.Equal(t, 1, g.CurrentPlayer)
}

func TestShootWithoutMatchingRollOrAmmoOnlyPassesTurn(t *testing.T) {
	tests := []struct {
		name     string
		lastRoll *int
		bullets  int
		target   int
	}{
		{name: "no roll yet", lastRoll: nil, bullets: MaxBullets, target: 1},
		{name: "roll does not match cell", lastRoll: intPtr(1), bullets: MaxBullets, target: 1},
		{name: "cell has no ammo", lastRoll: intPtr(2), bullets: 0, target: 1},
		{name: "aimed at self", lastRoll: intPtr(2), bullets: MaxBullets, target: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGame("A", "B")
			g.Players[0].FirstMove = false
			g.Players[0].Cells[1] = Cell{Stage: MaxStage, IsActive: true, Bullets: tt.bullets}
			g.Players[1].Cells[1] = active()
			g.LastRoll = tt.lastRoll

			want := g.Clone()
			want.CurrentPlayer = 1

			res := play(t, g, 0, Action{Kind: ActionShoot, TargetPlayer: tt.target, TargetCell: 1})

			assert.True(t, res.Processed)
			assert.Equal(t, want, g)
		})
	}
}

func TestShootBadTargetIsRefused(t *testing.T) {
	tests := []struct {
		name   string
		target int
		cell   int
	}{
		{name: "player out of range", target: 2, cell: 0},
		{name: "cell out of range", target: 1, cell: 2},
		{name: "negative cell", target: 1, cell: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGame("A", "B")
			g.Players[0].Cells[0] = loaded()
			g.LastRoll = intPtr(1)
			before := g.Clone()

			res := g.Apply(Action{Kind: ActionShoot, TargetPlayer: tt.target, TargetCell: tt.cell})

			assert.False(t, res.Processed)
			assert.Equal(t, before, g)
		})
	}
}

func TestShootingLastCellEndsTwoPlayerGame(t *testing.T) {
	g := newGame("A", "B")
	g.Players[0].FirstMove = false
	g.Players[0].Cells[1] = loaded()
	g.Players[1].Cells[1] = active()
	g.LastRoll = intPtr(2)

	res := play(t, g, 0, Action{Kind: ActionShoot, TargetPlayer: 1, TargetCell: 1})

	require.True(t, res.Ended)
	assert.Equal(t, PhaseEnded, g.Phase)
	assert.Equal(t, 0, g.CurrentPlayer, "turn must not advance on the final action")
	assert.True(t, g.Players[1].Eliminated)
	assert.Equal(t, []LogKind{KindShoot, KindEliminate}, kinds(g))

	require.NotNil(t, res.History)
	assert.Equal(t, "A", res.History.Winner)
	assert.Equal(t, []Elimination{{Eliminator: "A", Eliminated: "B"}}, res.History.Eliminations)
	assert.Equal(t, Stats{ShotsFired: 1, Eliminations: 1}, res.History.PlayerStats["A"])
	assert.Equal(t, Stats{TimesTargeted: 1}, res.History.PlayerStats["B"])

	// Nothing more happens once the game is over.
	after := g.Clone()
	assert.False(t, g.Apply(Action{Kind: ActionEmote, Message: "gg"}).Processed)
	assert.Equal(t, after, g)
}

func TestTurnsSkipEliminatedPlayers(t *testing.T) {
	g := newGame("A", "B", "C")
	for i := range g.Players {
		g.Players[i].FirstMove = false
	}
	g.Players[0].Cells[0] = loaded()
	g.Players[0].Cells[2] = loaded()
	g.Players[1].Cells[0] = active()
	g.Players[2].Cells[0] = active()
	g.Players[2].Cells[2] = active()
	g.LastRoll = intPtr(1)

	// A knocks out B while it is not B's turn.
	play(t, g, 0, Action{Kind: ActionShoot, TargetPlayer: 1, TargetCell: 0})
	assert.True(t, g.Players[1].Eliminated)
	assert.Equal(t, 2, g.CurrentPlayer)

	play(t, g, 2, Action{Kind: ActionEmote, Message: "uh oh"})
	assert.Equal(t, 0, g.CurrentPlayer)

	play(t, g, 0, Action{Kind: ActionShoot, TargetPlayer: 2, TargetCell: 0})
	assert.False(t, g.Players[2].Eliminated)
	assert.Equal(t, 2, g.CurrentPlayer)

	play(t, g, 2, Action{Kind: ActionRoll, Value: 3})
	assert.Equal(t, 2, g.Players[2].Cells[2].Stage)
	assert.Equal(t, 0, g.CurrentPlayer)

	res := play(t, g, 0, Action{Kind: ActionShoot, TargetPlayer: 2, TargetCell: 2})

	require.True(t, res.Ended)
	assert.Equal(t, 0, g.CurrentPlayer)
	assert.Equal(t, "A", res.History.Winner)
	assert.Equal(t, []Elimination{
		{Eliminator: "A", Eliminated: "B"},
		{Eliminator: "A", Eliminated: "C"},
	}, res.History.Eliminations)
	assert.Equal(t, Stats{ShotsFired: 3, Eliminations: 2}, res.History.PlayerStats["A"])
	assert.Equal(t, Stats{TimesTargeted: 2}, res.History.PlayerStats["C"])
}

func TestEliminatedMatchesInactiveCells(t *testing.T) {
	g := newGame("A", "B", "C")
	g.Players[0].FirstMove = false
	g.Players[0].Cells[1] = loaded()
	g.Players[2].Cells[1] = active()
	g.LastRoll = intPtr(2)

	play(t, g, 0, Action{Kind: ActionShoot, TargetPlayer: 2, TargetCell: 1})

	for _, p := range g.Players {
		if p.Username == "C" {
			assert.Equal(t, p.allInactive(), p.Eliminated)
		}
	}
	assert.Equal(t, 1, g.CurrentPlayer)
}

func TestEmoteOnlyLogs(t *testing.T) {
	g := newGame("A", "B")
	want := g.Clone()
	want.CurrentPlayer = 1
	want.Log = append(want.Log, EmoteEntry{Player: "A", Message: "hello"})

	res := play(t, g, 0, Action{Kind: ActionEmote, Message: "hello"})

	assert.True(t, res.Processed)
	assert.Equal(t, want, g)
}

func TestUnknownActionIsIgnored(t *testing.T) {
	g := newGame("A", "B")
	before := g.Clone()

	res := g.Apply(Action{Kind: "dance"})

	assert.Equal(t, Outcome{}, res)
	assert.Equal(t, before, g)
}

func TestForfeit(t *testing.T) {
	t.Run("current player leaves", func(t *testing.T) {
		g := newGame("A", "B", "C")
		g.Players[0].Cells[0] = active()

		res := g.Forfeit("conn-A")

		assert.True(t, res.Processed)
		assert.False(t, res.Ended)
		assert.True(t, g.Players[0].Eliminated)
		assert.Equal(t, make([]Cell, 3), g.Players[0].Cells)
		assert.Equal(t, 1, g.CurrentPlayer)
		assert.Equal(t, []LogEntry{ForfeitEntry{Player: "A"}}, g.Log)
		assert.Equal(t, "A left the game.", g.Log[0].Text())
	})

	t.Run("last opponent leaves", func(t *testing.T) {
		g := newGame("A", "B")

		res := g.Forfeit("conn-A")

		require.True(t, res.Ended)
		assert.Equal(t, "B", res.History.Winner)
		assert.Empty(t, res.History.Eliminations)
	})

	t.Run("unknown player", func(t *testing.T) {
		g := newGame("A", "B")

		assert.False(t, g.Forfeit("nobody").Processed)
	})
}

func TestParseAction(t *testing.T) {
	a := ParseAction("shoot", json.RawMessage(`{"targetPlayer":2,"targetCell":1}`))
	assert.Equal(t, Action{Kind: ActionShoot, TargetPlayer: 2, TargetCell: 1}, a)

	a = ParseAction("roll", json.RawMessage(`{"value":"six"}`))
	assert.Equal(t, -1, a.Value)

	g := newGame("A", "B")
	assert.False(t, g.Apply(a).Processed)
}

func TestGameStateJSON(t *testing.T) {
	g := newGame("A", "B")
	play(t, g, 0, Action{Kind: ActionRoll, Value: 1})

	raw, err := json.Marshal(g)
	require.NoError(t, err)

	var decoded struct {
		CurrentPlayer int               `json:"currentPlayer"`
		LastRoll      *int              `json:"lastRoll"`
		GameLog       []json.RawMessage `json:"gameLog"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, 1, decoded.CurrentPlayer)
	require.NotNil(t, decoded.LastRoll)
	assert.Equal(t, 1, *decoded.LastRoll)
	require.Len(t, decoded.GameLog, 1)
	assert.JSONEq(t, `{"type":"activate","player":"A","cell":0,"text":"A activated cell 1."}`, string(decoded.GameLog[0]))
}
