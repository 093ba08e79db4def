// Package deck implements the theme-card dispenser: a shuffled copy of the
// configured pool that refills itself by reshuffling when it runs low.
package deck

import (
	"errors"
	"math/rand"

	"github.com/akikan18/shibari-karaoke/internal/game"
)

// ErrEmptyPool is the one genuine fault of the deck: with zero configured
// theme cards there is no valid card to deal and the engine must refuse to
// advance rather than deal an undefined one.
var ErrEmptyPool = errors.New("theme pool is empty")

// Shuffle returns a fresh deck: a uniform random permutation of the pool.
func Shuffle(pool []game.ThemeCard) game.ThemeCards {
	out := make(game.ThemeCards, len(pool))
	copy(out, pool)
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Draw takes count cards from the top of the deck and returns them together
// with the remaining deck. If the deck holds fewer cards than requested the
// entire pool is reshuffled into a fresh deck before drawing, so draws never
// block or fail on exhaustion. Duplicates across a reshuffle boundary are
// acceptable; a single draw's cards come from one deck segment and are
// therefore distinct by construction (assuming a duplicate-free pool).
func Draw(d game.ThemeCards, pool []game.ThemeCard, count int) ([]game.ThemeCard, game.ThemeCards, error) {
	if count <= 0 {
		return nil, d, nil
	}
	if len(pool) == 0 {
		return nil, d, ErrEmptyPool
	}
	if len(d) < count {
		d = Shuffle(pool)
	}
	if len(d) < count {
		// pool smaller than the request; deal what one full shuffle holds
		count = len(d)
	}
	cards := make([]game.ThemeCard, count)
	copy(cards, d[:count])
	rest := make(game.ThemeCards, len(d)-count)
	copy(rest, d[count:])
	return cards, rest, nil
}

// DrawOne is the single-card convenience used for normal post-turn deals.
func DrawOne(d game.ThemeCards, pool []game.ThemeCard) (game.ThemeCard, game.ThemeCards, error) {
	cards, rest, err := Draw(d, pool, 1)
	if err != nil {
		return game.ThemeCard{}, d, err
	}
	return cards[0], rest, nil
}
