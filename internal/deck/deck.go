// Package deck manages the citizen cards of one game: the available pool in
// its shuffled order, the hand drawn from it, the discard pile, and which
// hand cards the player has selected.
package deck

import (
	"fmt"
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/talgya/cardcity/internal/catalog"
	"github.com/talgya/cardcity/internal/entropy"
)

// HandSize is the number of cards dealt at the start of each day.
const HandSize = 4

// Manager owns the card partitions. Hand and Discarded are disjoint subsets
// of Available.
type Manager struct {
	src       entropy.Source
	available []catalog.CitizenCode
	hand      []catalog.CitizenCode
	discarded []catalog.CitizenCode
	selected  mapset.Set[catalog.CitizenCode]
}

// New creates an empty manager. Nothing is dealt until StartGame.
func New(src entropy.Source) *Manager {
	return &Manager{src: src, selected: mapset.New[catalog.CitizenCode]()}
}

// StartGame resets the pool to the given citizens and deals a fresh hand.
func (m *Manager) StartGame(pool []catalog.CitizenCode) {
	m.available = slices.Clone(pool)
	m.deal()
}

// StartNewDay reshuffles the whole pool, returning discards, and deals again.
func (m *Manager) StartNewDay() {
	m.deal()
}

func (m *Manager) deal() {
	m.src.Shuffle(len(m.available), func(i, j int) {
		m.available[i], m.available[j] = m.available[j], m.available[i]
	})
	n := min(HandSize, len(m.available))
	m.hand = slices.Clone(m.available[:n])
	m.discarded = nil
	m.selected = mapset.New[catalog.CitizenCode]()
}

// CardsInDeck returns the undrawn cards in deck order.
func (m *Manager) CardsInDeck() []catalog.CitizenCode {
	out := make([]catalog.CitizenCode, 0, len(m.available))
	for _, c := range m.available {
		if slices.Contains(m.hand, c) || slices.Contains(m.discarded, c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Discard moves the given hand cards to the discard pile. Each vacated slot
// takes the next deck card; a slot is dropped when the deck is empty, so the
// hand can shrink. Codes not in hand are ignored. It returns the codes that
// were actually discarded.
func (m *Manager) Discard(codes []catalog.CitizenCode) []catalog.CitizenCode {
	drop := mapset.New[catalog.CitizenCode]()
	for _, c := range codes {
		if m.InHand(c) {
			drop.Put(c)
		}
	}
	if drop.Size() == 0 {
		return nil
	}

	deck := m.CardsInDeck()
	hand := make([]catalog.CitizenCode, 0, len(m.hand))
	var gone []catalog.CitizenCode
	for _, c := range m.hand {
		if !drop.Has(c) {
			hand = append(hand, c)
			continue
		}
		gone = append(gone, c)
		if len(deck) > 0 {
			hand = append(hand, deck[0])
			deck = deck[1:]
		}
	}

	m.hand = hand
	m.discarded = append(m.discarded, gone...)
	for _, c := range gone {
		m.selected.Remove(c)
	}
	return gone
}

// Toggle flips the selection of a hand card and reports whether it is now
// selected. It returns false, false for a card that is not in hand.
func (m *Manager) Toggle(code catalog.CitizenCode) (selected, ok bool) {
	if !m.InHand(code) {
		return false, false
	}
	if m.selected.Has(code) {
		m.selected.Remove(code)
		return false, true
	}
	m.selected.Put(code)
	return true, true
}

// Selected returns the selected cards in hand order.
func (m *Manager) Selected() []catalog.CitizenCode {
	var out []catalog.CitizenCode
	for _, c := range m.hand {
		if m.selected.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// SelectedCitizens resolves Selected to card definitions.
func (m *Manager) SelectedCitizens() []catalog.Citizen {
	var out []catalog.Citizen
	for _, c := range m.Selected() {
		if cit, ok := catalog.Lookup(c); ok {
			out = append(out, cit)
		}
	}
	return out
}

// InHand reports whether code is currently in hand.
func (m *Manager) InHand(code catalog.CitizenCode) bool {
	return slices.Contains(m.hand, code)
}

// Started reports whether a game has been dealt.
func (m *Manager) Started() bool {
	return m.available != nil
}

func (m *Manager) Available() []catalog.CitizenCode { return slices.Clone(m.available) }
func (m *Manager) Hand() []catalog.CitizenCode      { return slices.Clone(m.hand) }
func (m *Manager) Discarded() []catalog.CitizenCode { return slices.Clone(m.discarded) }

// Restore rebuilds a manager from saved partitions. Selection is not saved.
func Restore(src entropy.Source, available, hand, discarded []catalog.CitizenCode) (*Manager, error) {
	if len(hand) > HandSize {
		return nil, fmt.Errorf("hand has %d cards, at most %d allowed", len(hand), HandSize)
	}
	seen := mapset.New[catalog.CitizenCode]()
	for _, c := range available {
		if _, ok := catalog.Lookup(c); !ok {
			return nil, fmt.Errorf("unknown citizen code %d", c)
		}
		if seen.Has(c) {
			return nil, fmt.Errorf("citizen %s listed twice", c)
		}
		seen.Put(c)
	}
	placed := mapset.New[catalog.CitizenCode]()
	for _, c := range hand {
		if !seen.Has(c) {
			return nil, fmt.Errorf("hand card %s is not in the pool", c)
		}
		if placed.Has(c) {
			return nil, fmt.Errorf("hand card %s listed twice", c)
		}
		placed.Put(c)
	}
	for _, c := range discarded {
		if !seen.Has(c) {
			return nil, fmt.Errorf("discarded card %s is not in the pool", c)
		}
		if placed.Has(c) {
			if slices.Contains(hand, c) {
				return nil, fmt.Errorf("card %s is both in hand and discarded", c)
			}
			return nil, fmt.Errorf("discarded card %s listed twice", c)
		}
		placed.Put(c)
	}

	m := New(src)
	m.available = slices.Clone(available)
	if m.available == nil {
		m.available = []catalog.CitizenCode{}
	}
	m.hand = slices.Clone(hand)
	m.discarded = slices.Clone(discarded)
	return m, nil
}
