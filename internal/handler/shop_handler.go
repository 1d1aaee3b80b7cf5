package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/healthtwin-backend/internal/engine"
	"github.com/jengzang/healthtwin-backend/internal/middleware"
	"github.com/jengzang/healthtwin-backend/internal/models"
	"github.com/jengzang/healthtwin-backend/internal/service"
	"github.com/jengzang/healthtwin-backend/pkg/response"
)

// ShopHandler handles HTTP requests for the avatar shop
type ShopHandler struct {
	progressService *service.ProgressService
}

// NewShopHandler creates a new shop handler
func NewShopHandler(progressService *service.ProgressService) *ShopHandler {
	return &ShopHandler{progressService: progressService}
}

// ShopItemView is a catalog item with the user's ownership
type ShopItemView struct {
	models.ShopItem
	Owned    bool `json:"owned"`
	Equipped bool `json:"equipped"`
}

// ShopView is the catalog as seen by one user
type ShopView struct {
	Coins    int            `json:"coins"`
	Items    []ShopItemView `json:"items"`
	Owned    []string       `json:"owned"`
	Equipped []string       `json:"equipped"`
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

func newShopView(st *engine.State) ShopView {
	items := make([]ShopItemView, 0, len(models.ShopCatalog))
	for _, item := range models.ShopCatalog {
		items = append(items, ShopItemView{
			ShopItem: item,
			Owned:    contains(st.PurchasedItems, item.ID),
			Equipped: contains(st.EquippedItems, item.ID),
		})
	}
	return ShopView{Coins: st.Coins, Items: items, Owned: st.PurchasedItems, Equipped: st.EquippedItems}
}

// GetShop handles GET /api/v1/shop
func (h *ShopHandler) GetShop(c *gin.Context) {
	st, err := h.progressService.State(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, newShopView(st))
}

// Purchase handles POST /api/v1/shop/:id/purchase
func (h *ShopHandler) Purchase(c *gin.Context) {
	h.apply(c, h.progressService.Purchase)
}

// Equip handles POST /api/v1/shop/:id/equip
func (h *ShopHandler) Equip(c *gin.Context) {
	h.apply(c, h.progressService.Equip)
}

// Unequip handles POST /api/v1/shop/:id/unequip
func (h *ShopHandler) Unequip(c *gin.Context) {
	h.apply(c, h.progressService.Unequip)
}

type wardrobeOp func(ctx context.Context, userID, itemID string) (*engine.State, error)

func (h *ShopHandler) apply(c *gin.Context, op wardrobeOp) {
	st, err := op(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, newShopView(st))
}
