package domain

// Sweet is the backend's inventory item as served by the /sweets endpoints.
// Price stays a string end to end so display never goes through a float.
type Sweet struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
}

type StockStatus string

const (
	OutOfStock StockStatus = "Out of Stock"
	LowStock   StockStatus = "Low Stock"
	InStock    StockStatus = "In Stock"
)

// lowStockThreshold is the largest quantity still reported as Low Stock.
const lowStockThreshold = 5

// StockStatusOf maps a quantity onto exactly one stock label.
func StockStatusOf(quantity int) StockStatus {
	switch {
	case quantity <= 0:
		return OutOfStock
	case quantity <= lowStockThreshold:
		return LowStock
	default:
		return InStock
	}
}

// Purchasable reports whether the sweet can still be bought from the shelf.
func (s Sweet) Purchasable() bool {
	return s.Quantity > 0
}

// SweetDraft is the transient form state for creating or editing a sweet.
// A nil TargetID means create; a non-nil one means update that sweet.
type SweetDraft struct {
	TargetID *string `json:"target_id,omitempty"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    string  `json:"price"`
	Quantity int     `json:"quantity"`
}
