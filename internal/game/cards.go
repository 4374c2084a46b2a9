package game

import (
	"errors"
	"strconv"
	"strings"
)

// Card is a single drawn creature card. The wire form is "species#rank".
type Card struct {
	Species string
	Rank    int
}

func (c Card) String() string {
	return c.Species + "#" + strconv.Itoa(c.Rank)
}

var ErrBadCard = errors.New("bad_card")

func ParseCard(s string) (Card, error) {
	species, rankStr, ok := strings.Cut(s, "#")
	if !ok || species == "" {
		return Card{}, ErrBadCard
	}
	rank, err := strconv.Atoi(rankStr)
	if err != nil {
		return Card{}, ErrBadCard
	}
	return Card{Species: species, Rank: rank}, nil
}

type species struct {
	name  string
	ranks []int
}

// Fixed draw table. Each slot is drawn with replacement: pick a species,
// then one of its ranks. There is no shared deck and no scarcity.
var speciesTable = []species{
	{name: "pikachu", ranks: []int{1, 2, 5}},
	{name: "chemander", ranks: []int{10, 17}},
	{name: "foo", ranks: []int{11}},
}

// ValidCard reports whether c could have been produced by the draw table.
func ValidCard(c Card) bool {
	for _, sp := range speciesTable {
		if sp.name != c.Species {
			continue
		}
		for _, r := range sp.ranks {
			if r == c.Rank {
				return true
			}
		}
	}
	return false
}
