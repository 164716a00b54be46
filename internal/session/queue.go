// internal/session/queue.go
package session

import (
	"bgde_trainer/internal/model"
)

// BuildQueue assembles the card list for one practice session.
//
// Due records come first, most overdue leading (the caller supplies them
// already sorted by next-review date). Remaining slots are backfilled with
// candidates that have no review record yet, in catalogue order. Items
// with a record that is not due are never backfilled, and an item appears
// at most once.
func BuildQueue(candidates []model.Card, due []*model.ReviewRecord, tracked map[string]*model.ReviewRecord, targetSize int) []model.Card {
	if targetSize <= 0 {
		return nil
	}

	byID := make(map[string]*model.Card, len(candidates))
	for i := range candidates {
		byID[candidates[i].ItemID] = &candidates[i]
	}

	queue := make([]model.Card, 0, targetSize)
	seen := make(map[string]bool, targetSize)

	for _, rec := range due {
		if len(queue) >= targetSize {
			break
		}
		card, ok := byID[rec.ItemID]
		if !ok || seen[rec.ItemID] {
			// Records may outlive catalogue entries; skip orphans.
			continue
		}
		seen[rec.ItemID] = true
		queue = append(queue, *card)
	}

	for i := range candidates {
		if len(queue) >= targetSize {
			break
		}
		card := &candidates[i]
		if seen[card.ItemID] {
			continue
		}
		if _, tracked := tracked[card.ItemID]; tracked {
			continue
		}
		seen[card.ItemID] = true
		queue = append(queue, *card)
	}

	return queue
}
