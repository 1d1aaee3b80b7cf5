package models

// ItemType is the wardrobe slot a shop item occupies
type ItemType string

const (
	ItemHat       ItemType = "hat"
	ItemAccessory ItemType = "accessory"
	ItemShirt     ItemType = "shirt"
	ItemPants     ItemType = "pants"
	ItemShoes     ItemType = "shoes"
	ItemCape      ItemType = "cape"
	ItemWings     ItemType = "wings"
)

// ShopItem is an avatar customization item
type ShopItem struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Price int      `json:"price"`
	Type  ItemType `json:"type"`
	Color string   `json:"color"`
}

// ShopCatalog is the fixed list of purchasable items
var ShopCatalog = []ShopItem{
	{ID: "hat_cap", Name: "Sports Cap", Price: 50, Type: ItemHat, Color: "#FF6B6B"},
	{ID: "hat_beanie", Name: "Cozy Beanie", Price: 60, Type: ItemHat, Color: "#4ECDC4"},
	{ID: "hat_crown", Name: "Champion Crown", Price: 200, Type: ItemHat, Color: "#FFD700"},
	{ID: "glasses_cool", Name: "Cool Shades", Price: 40, Type: ItemAccessory, Color: "#1A1A2E"},
	{ID: "glasses_heart", Name: "Heart Glasses", Price: 45, Type: ItemAccessory, Color: "#FF69B4"},
	{ID: "shirt_red", Name: "Red Shirt", Price: 30, Type: ItemShirt, Color: "#FF4757"},
	{ID: "shirt_blue", Name: "Blue Shirt", Price: 30, Type: ItemShirt, Color: "#3742FA"},
	{ID: "shirt_green", Name: "Green Shirt", Price: 30, Type: ItemShirt, Color: "#2ED573"},
	{ID: "shirt_gold", Name: "Golden Jersey", Price: 150, Type: ItemShirt, Color: "#FFD700"},
	{ID: "pants_jeans", Name: "Blue Jeans", Price: 35, Type: ItemPants, Color: "#4834D4"},
	{ID: "pants_sporty", Name: "Sporty Pants", Price: 40, Type: ItemPants, Color: "#1A1A2E"},
	{ID: "shoes_sneakers", Name: "Running Sneakers", Price: 55, Type: ItemShoes, Color: "#FF6B6B"},
	{ID: "shoes_boots", Name: "Cool Boots", Price: 70, Type: ItemShoes, Color: "#8B4513"},
	{ID: "cape_hero", Name: "Hero Cape", Price: 300, Type: ItemCape, Color: "#9B59B6"},
	{ID: "wings_angel", Name: "Angel Wings", Price: 500, Type: ItemWings, Color: "#FFFFFF"},
}

// FindShopItem looks up a catalog item by id
func FindShopItem(id string) (ShopItem, bool) {
	for _, item := range ShopCatalog {
		if item.ID == id {
			return item, true
		}
	}
	return ShopItem{}, false
}
