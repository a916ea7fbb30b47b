package models

import "time"

// Booking records a paid (or admin-created) reservation of a tour. Tour
// and User are weak references; no cascading delete is performed.
type Booking struct {
	ID        string    `bson:"id" json:"id"`
	Tour      string    `bson:"tour" json:"tour" binding:"required"`
	User      string    `bson:"user" json:"user" binding:"required"`
	Price     float64   `bson:"price" json:"price" binding:"required,gt=0"`
	Paid      bool      `bson:"paid" json:"paid"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
