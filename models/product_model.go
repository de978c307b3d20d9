package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StockStatusIn  = "In Stock"
	StockStatusLow = "Low Stock"
	StockStatusOut = "Out of Stock"
)

type Product struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description" bson:"description,omitempty"`
	Category    string             `json:"category" bson:"category"`
	Price       float64            `json:"price" bson:"price"`
	Stock       int                `json:"stock" bson:"stock"`
	ImageURL    string             `json:"imageUrl" bson:"imageUrl,omitempty"`
	Images      []string           `json:"images" bson:"images,omitempty"`
	SKU         string             `json:"sku,omitempty" bson:"sku,omitempty"`
	Color       string             `json:"color,omitempty" bson:"color,omitempty"`
	Texture     string             `json:"texture,omitempty" bson:"texture,omitempty"`
	Rating      float64            `json:"rating" bson:"rating"`
	Reviews     int                `json:"reviews" bson:"reviews"`
	Featured    bool               `json:"featured" bson:"featured"`
	InStock     bool               `json:"inStock" bson:"inStock"`
	Status      string             `json:"status" bson:"status"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// SyncStockStatus derives the display status from the stock count.
func (p *Product) SyncStockStatus() {
	p.InStock = p.Stock > 0
	switch {
	case p.Stock == 0:
		p.Status = StockStatusOut
	case p.Stock <= 10:
		p.Status = StockStatusLow
	default:
		p.Status = StockStatusIn
	}
	if p.ImageURL != "" && len(p.Images) == 0 {
		p.Images = []string{p.ImageURL}
	}
}
