package game

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"groundwork/internal/data"
	"groundwork/internal/models"
)

// ResourceService owns the money/time/scope bookkeeping. Every mutation
// goes through the store's update entry point and returns the resulting
// balance so callers can report what actually changed.
type ResourceService struct {
	store *Store
	log   *logrus.Entry
}

// NewResourceService wires a resource service to the store.
func NewResourceService(store *Store, log *logrus.Entry) *ResourceService {
	return &ResourceService{store: store, log: log}
}

// AddMoney credits (or debits, for negative amounts) a player's money and
// returns the new balance.
func (r *ResourceService) AddMoney(playerID uuid.UUID, amount int, reason string) (int, error) {
	return r.adjust(playerID, ResourceMoney, amount, reason)
}

// AddTime adds days to the player's time-spent ledger.
func (r *ResourceService) AddTime(playerID uuid.UUID, days int, reason string) (int, error) {
	return r.adjust(playerID, ResourceTime, days, reason)
}

// AddScope adjusts the player's project scope.
func (r *ResourceService) AddScope(playerID uuid.UUID, amount int, reason string) (int, error) {
	return r.adjust(playerID, ResourceScope, amount, reason)
}

// RecordCost debits money for a fee or cost, logging the reason.
func (r *ResourceService) RecordCost(playerID uuid.UUID, amount int, reason string) (int, error) {
	return r.adjust(playerID, ResourceMoney, -amount, reason)
}

// PercentOfMoney returns the given percent of the player's current money,
// for percent-valued fee effects.
func (r *ResourceService) PercentOfMoney(playerID uuid.UUID, percent int) (int, error) {
	p, err := r.store.Player(playerID)
	if err != nil {
		return 0, err
	}
	return p.Money * percent / 100, nil
}

func (r *ResourceService) adjust(playerID uuid.UUID, res Resource, amount int, reason string) (int, error) {
	p, err := r.store.Player(playerID)
	if err != nil {
		return 0, err
	}
	var balance int
	r.store.Update(func(s *State) {
		p = s.Player(playerID)
		switch res {
		case ResourceMoney:
			p.Money += amount
			balance = p.Money
		case ResourceTime:
			p.TimeSpent += amount
			balance = p.TimeSpent
		case ResourceScope:
			p.ProjectScope += amount
			balance = p.ProjectScope
		}
	})
	r.log.WithFields(logrus.Fields{
		"player": playerID, "resource": res, "amount": amount, "balance": balance, "reason": reason,
	}).Debug("resource adjusted")
	return balance, nil
}

// CardService owns deck storage and the draw/discard/transfer operations.
// Draws confirm the card ids actually produced, so feedback can report the
// real outcome rather than a declared table value.
type CardService struct {
	store *Store
	data  data.Provider
	log   *logrus.Entry
	rng   *rng

	// DefaultDrawCount applies when a draw effect declared no usable count.
	DefaultDrawCount int
}

// NewCardService wires a card service to the store and card catalog.
func NewCardService(store *Store, provider data.Provider, log *logrus.Entry, seed uint64) *CardService {
	return &CardService{
		store:            store,
		data:             provider,
		log:              log,
		rng:              newRNG(seed),
		DefaultDrawCount: 1,
	}
}

// InitDecks builds and shuffles one deck per card type from the catalog.
func (c *CardService) InitDecks() {
	c.store.Update(func(s *State) {
		for _, t := range []string{"W", "B", "E", "L", "I"} {
			deck := c.data.CardIDsByType(t)
			// Fisher-Yates.
			for i := len(deck) - 1; i > 0; i-- {
				j := c.rng.intn(i + 1)
				deck[i], deck[j] = deck[j], deck[i]
			}
			s.Decks[t] = deck
			s.Discards[t] = nil
		}
	})
}

// DrawCards draws up to count cards of the type into the player's hand and
// returns the ids actually drawn. count <= 0 draws DefaultDrawCount. When
// the deck empties mid-draw the discard pile is reshuffled back in; if both
// are empty the draw stops short rather than failing.
func (c *CardService) DrawCards(playerID uuid.UUID, cardType string, count int) ([]string, error) {
	if _, err := c.store.Player(playerID); err != nil {
		return nil, err
	}
	if count <= 0 {
		count = c.DefaultDrawCount
	}
	var drawn []string
	c.store.Update(func(s *State) {
		p := s.Player(playerID)
		for i := 0; i < count; i++ {
			if len(s.Decks[cardType]) == 0 {
				c.reshuffle(s, cardType)
			}
			deck := s.Decks[cardType]
			if len(deck) == 0 {
				break
			}
			id := deck[len(deck)-1]
			s.Decks[cardType] = deck[:len(deck)-1]
			p.Hand = append(p.Hand, id)
			drawn = append(drawn, id)
			c.activateIfTimed(p, id)
		}
	})
	c.log.WithFields(logrus.Fields{"player": playerID, "type": cardType, "drawn": len(drawn)}).Debug("cards drawn")
	return drawn, nil
}

// activateIfTimed registers a duration card as active.
func (c *CardService) activateIfTimed(p *models.Player, id string) {
	card, ok := c.data.GetCardByID(id)
	if !ok || card.Duration <= 0 {
		return
	}
	p.ActiveCards = append(p.ActiveCards, models.ActiveCard{CardID: id, TurnsLeft: card.Duration})
}

// reshuffle moves the discard pile back into the deck and shuffles.
func (c *CardService) reshuffle(s *State, cardType string) {
	if len(s.Discards[cardType]) == 0 {
		return
	}
	deck := s.Discards[cardType]
	s.Discards[cardType] = nil
	for i := len(deck) - 1; i > 0; i-- {
		j := c.rng.intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	s.Decks[cardType] = deck
	c.log.WithField("type", cardType).Info("discard pile reshuffled into deck")
}

// DiscardCards removes the given card ids from the player's hand onto the
// matching discard piles and returns the ids actually discarded (cards not
// in hand are skipped, not errors).
func (c *CardService) DiscardCards(playerID uuid.UUID, cardIDs []string) ([]string, error) {
	if _, err := c.store.Player(playerID); err != nil {
		return nil, err
	}
	var removed []string
	c.store.Update(func(s *State) {
		p := s.Player(playerID)
		for _, id := range cardIDs {
			if removeFromHand(p, id) {
				s.Discards[typeOfCard(id)] = append(s.Discards[typeOfCard(id)], id)
				removed = append(removed, id)
			}
		}
	})
	return removed, nil
}

// DiscardByType discards up to count cards of the type from the front of
// the player's hand and returns the ids discarded.
func (c *CardService) DiscardByType(playerID uuid.UUID, cardType string, count int) ([]string, error) {
	if _, err := c.store.Player(playerID); err != nil {
		return nil, err
	}
	var discarded []string
	c.store.Update(func(s *State) {
		p := s.Player(playerID)
		for _, id := range append([]string(nil), p.Hand...) {
			if len(discarded) == count {
				break
			}
			if typeOfCard(id) != cardType {
				continue
			}
			removeFromHand(p, id)
			s.Discards[cardType] = append(s.Discards[cardType], id)
			discarded = append(discarded, id)
		}
	})
	return discarded, nil
}

// TransferCard moves a card from one player's hand to another's.
func (c *CardService) TransferCard(from, to uuid.UUID, cardID string) error {
	if _, err := c.store.Player(from); err != nil {
		return err
	}
	if _, err := c.store.Player(to); err != nil {
		return err
	}
	var moved bool
	c.store.Update(func(s *State) {
		src := s.Player(from)
		dst := s.Player(to)
		if removeFromHand(src, cardID) {
			dst.Hand = append(dst.Hand, cardID)
			moved = true
		}
	})
	if !moved {
		return fmt.Errorf("card %s not in player %s hand", cardID, from)
	}
	return nil
}

func typeOfCard(id string) string {
	if id == "" {
		return ""
	}
	return string(id[0])
}

// removeFromHand removes the first occurrence of the card id from the
// player's hand. Returns false when the card is not held.
func removeFromHand(p *models.Player, cardID string) bool {
	for i, id := range p.Hand {
		if id == cardID {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}
