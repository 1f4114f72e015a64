/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package cells

var palette = [...]string{
	"#e6194b", // red
	"#3cb44b", // green
	"#4363d8", // blue
	"#ffe119", // yellow
	"#911eb4", // purple
	"#f58231", // orange
}

// ColorFor returns the color assigned to the player at the given join index.
func ColorFor(index int) string {
	return palette[index%len(palette)]
}
