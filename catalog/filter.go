// Package catalog holds the listing rules shared by the hub server and its clients.
package catalog

import (
	"strings"

	"game-hub/models"

	"golang.org/x/text/cases"
)

var fold = cases.Fold()

// Fold normalizes s for case-insensitive comparison.
func Fold(s string) string {
	return fold.String(s)
}

// Filter keeps the games whose title or description contains term,
// case-insensitively, preserving order. An empty term keeps everything.
func Filter(games []models.Game, term string) []models.Game {
	if term == "" {
		return games
	}
	folded := Fold(term)
	out := make([]models.Game, 0, len(games))
	for _, g := range games {
		if matches(g, folded) {
			out = append(out, g)
		}
	}
	return out
}

func matches(g models.Game, folded string) bool {
	return strings.Contains(Fold(g.Title), folded) || strings.Contains(Fold(g.Description), folded)
}
