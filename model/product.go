package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/*

Product is a marketplace listing

Id: primary key
CreatedAt: time when entity is created
DeletedAt: time when entity is deleted

SellerID:
Seller: user selling the product, "belongs-to" relation

Title / Description: listing copy
PriceCents: unit price in the smallest currency unit
Currency: ISO 4217 code, e.g. "USD"
Stock: units available. Decremented with a conditional UPDATE when an
		order is placed so it can never go below zero.
ImageUrls: JSON array of media locations on the CDN
Active: whether the listing is visible and orderable

*/

type Product struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt

	SellerID string `gorm:"index"`
	Seller   User

	Title       string
	Description string
	PriceCents  int64
	Currency    string
	Stock       int32
	ImageUrls   datatypes.JSON
	Active      bool
}
