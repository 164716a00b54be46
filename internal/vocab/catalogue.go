// internal/vocab/catalogue.go
package vocab

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"bgde_trainer/internal/model"
)

// Catalogue is the read-only vocabulary source. Order is significant: the
// queue builder backfills unseen items in catalogue order.
type Catalogue interface {
	// Candidates returns every item oriented for one practice direction,
	// in catalogue order.
	Candidates(direction model.Direction) []model.Card
	GetByID(id string) (*model.VocabularyItem, bool)
}

type fileCatalogue struct {
	items []model.VocabularyItem
	byID  map[string]int
}

// LoadFile reads the catalogue from a JSON array on disk. Entries without
// an ID or with a duplicate ID are dropped with a warning.
func LoadFile(path string, logger *slog.Logger) (Catalogue, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vocab.LoadFile: %w", err)
	}

	var items []model.VocabularyItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("vocab.LoadFile: parsing %s: %w", path, err)
	}

	c := &fileCatalogue{byID: make(map[string]int, len(items))}
	for _, item := range items {
		if item.ID == "" {
			logger.Warn("Skipping vocabulary entry without id", "word", item.Word)
			continue
		}
		if _, dup := c.byID[item.ID]; dup {
			logger.Warn("Skipping duplicate vocabulary entry", "id", item.ID)
			continue
		}
		c.byID[item.ID] = len(c.items)
		c.items = append(c.items, item)
	}

	logger.Info("Vocabulary catalogue loaded", "path", path, "items", len(c.items))
	return c, nil
}

// NewStatic wraps a fixed item list, mainly for tests.
func NewStatic(items []model.VocabularyItem) Catalogue {
	c := &fileCatalogue{byID: make(map[string]int, len(items))}
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		if _, dup := c.byID[item.ID]; dup {
			continue
		}
		c.byID[item.ID] = len(c.items)
		c.items = append(c.items, item)
	}
	return c
}

func (c *fileCatalogue) Candidates(direction model.Direction) []model.Card {
	cards := make([]model.Card, 0, len(c.items))
	for i := range c.items {
		cards = append(cards, CardFor(&c.items[i], direction))
	}
	return cards
}

func (c *fileCatalogue) GetByID(id string) (*model.VocabularyItem, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return &c.items[idx], true
}

// CardFor orients an item for one practice direction. For bg-de the
// Bulgarian word is the prompt; for de-bg the German translation is.
// Direction-specific notes win over the shared note.
func CardFor(item *model.VocabularyItem, direction model.Direction) model.Card {
	card := model.Card{
		ItemID: item.ID,
		Level:  item.Level,
		Notes:  item.Notes,
	}
	switch direction {
	case model.DirectionBGDE:
		card.Front = item.Word
		card.Back = item.Translation
		if item.NotesBGDE != "" {
			card.Notes = item.NotesBGDE
		}
	default: // de-bg
		card.Front = item.Translation
		card.Back = item.Word
		if item.NotesDEBG != "" {
			card.Notes = item.NotesDEBG
		}
	}
	return card
}
