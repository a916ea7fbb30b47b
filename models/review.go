package models

import "time"

// Review is a user's rating of a tour. At most one review may exist per
// (user, tour) pair, enforced by a unique compound index.
type Review struct {
	ID        string    `bson:"id" json:"id"`
	Review    string    `bson:"review,omitempty" json:"review,omitempty"`
	Rating    float64   `bson:"rating" json:"rating" binding:"required,min=1,max=5"`
	Tour      string    `bson:"tour" json:"tour"`
	User      string    `bson:"user" json:"user"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// ReviewWithAuthor carries the resolved author document for rendering.
type ReviewWithAuthor struct {
	Review `bson:",inline"`
	Author *User `bson:"author,omitempty" json:"author,omitempty"`
}
