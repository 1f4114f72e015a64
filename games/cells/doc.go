// How to play
// - Players gather in a room, either by sharing its numeric code or through quick match
// - The leader starts the game once everyone is ready
// - Each player has one numbered cell per player in the game
// - On your turn, roll the die: nobody's rolls count until they roll a 1
// - Rolling a cell's number activates it, then levels it up; at level 6 it holds 5 bullets
// - Rolling a maxed, empty cell reloads it
// - If the last roll matches one of your loaded cells, you can shoot that cell on an opponent's board
// - A player whose cells are all inactive is eliminated; the last player standing wins

// Package cells holds the rooms, lobby, and turn engine for the cell
// shootout dice game. It decides what happens and who hears about it;
// delivering the resulting pushes is left to the caller.
package cells
