package domain

import (
	"time"

	errprocess "farmlink_service/pkg/err"
)

// WasteType kind of agricultural by-product on offer
type WasteType string

const (
	WasteCowManure     WasteType = "cow_manure"
	WastePigManure     WasteType = "pig_manure"
	WasteChickenManure WasteType = "chicken_manure"
	WasteRiceStraw     WasteType = "rice_straw"
	WasteCompost       WasteType = "compost"
)

// ErrProductNotFound no product with the given id
var ErrProductNotFound = errprocess.New(errprocess.CodeNotFound, "product not found")

// Product a listing; SellerID is the member conversations about it are opened with
type Product struct {
	ID         string    `gorm:"primaryKey;size:100" json:"id"`
	SellerID   string    `gorm:"index;size:100;not null" json:"seller_id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	WasteType  WasteType `gorm:"size:32" json:"waste_type"`
	QuantityKg float64   `json:"quantity_kg"`
	PricePerKg float64   `json:"price_per_kg"`
	Province   string    `gorm:"size:100" json:"province"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
