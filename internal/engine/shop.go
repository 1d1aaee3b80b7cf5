package engine

import (
	"github.com/jengzang/healthtwin-backend/internal/models"
)

// Purchase buys a catalog item with coins.
func (e *Engine) Purchase(itemID string) error {
	item, ok := models.FindShopItem(itemID)
	if !ok {
		return ErrUnknownItem
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.st.owns(item.ID) {
		return ErrAlreadyOwned
	}
	if e.st.Coins < item.Price {
		return ErrInsufficientCoins
	}
	e.st.Coins -= item.Price
	e.st.PurchasedItems = append(e.st.PurchasedItems, item.ID)
	return nil
}

// Equip wears an owned item, replacing whatever occupies the same slot.
func (e *Engine) Equip(itemID string) error {
	item, ok := models.FindShopItem(itemID)
	if !ok {
		return ErrUnknownItem
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.st.owns(item.ID) {
		return ErrNotOwned
	}
	equipped := make([]string, 0, len(e.st.EquippedItems)+1)
	for _, id := range e.st.EquippedItems {
		if other, ok := models.FindShopItem(id); ok && other.Type == item.Type {
			continue
		}
		equipped = append(equipped, id)
	}
	e.st.EquippedItems = append(equipped, item.ID)
	return nil
}

// Unequip removes an item from the avatar. It reports whether it was worn.
func (e *Engine) Unequip(itemID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, id := range e.st.EquippedItems {
		if id == itemID {
			e.st.EquippedItems = append(e.st.EquippedItems[:i:i], e.st.EquippedItems[i+1:]...)
			return true
		}
	}
	return false
}
