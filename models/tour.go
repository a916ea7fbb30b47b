package models

import "time"

// GeoPoint is a GeoJSON point with optional itinerary metadata.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [lng, lat]
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Day         int       `bson:"day,omitempty" json:"day,omitempty"`
}

// Tour is a bookable trip. Secret tours are excluded from every default
// read at the repository layer.
type Tour struct {
	ID              string      `bson:"id" json:"id"`
	Name            string      `bson:"name" json:"name" binding:"required,min=10,max=50"`
	Slug            string      `bson:"slug" json:"slug"`
	Duration        int         `bson:"duration" json:"duration" binding:"required,gt=0"`
	MaxGroupSize    int         `bson:"maxGroupSize" json:"maxGroupSize" binding:"required,gt=0"`
	Difficulty      string      `bson:"difficulty" json:"difficulty" binding:"required,oneof=easy medium difficult"`
	RatingsAverage  float64     `bson:"ratingsAverage" json:"ratingsAverage" binding:"omitempty,min=1,max=5"`
	RatingsQuantity int         `bson:"ratingsQuantity" json:"ratingsQuantity"`
	Price           float64     `bson:"price" json:"price" binding:"required,gt=0"`
	DiscountPrice   float64     `bson:"discountPrice,omitempty" json:"discountPrice,omitempty"`
	Summary         string      `bson:"summary" json:"summary" binding:"required"`
	Description     string      `bson:"description,omitempty" json:"description,omitempty"`
	ImageCover      string      `bson:"imageCover,omitempty" json:"imageCover,omitempty"`
	Images          []string    `bson:"images,omitempty" json:"images,omitempty"`
	StartDates      []time.Time `bson:"startDates,omitempty" json:"startDates,omitempty"`
	StartLocation   *GeoPoint   `bson:"startLocation,omitempty" json:"startLocation,omitempty"`
	Locations       []GeoPoint  `bson:"locations,omitempty" json:"locations,omitempty"`
	Guides          []string    `bson:"guides,omitempty" json:"guides,omitempty"`
	SecretTour      bool        `bson:"secretTour" json:"-"`
	CreatedAt       time.Time   `bson:"createdAt" json:"-"`
	UpdatedAt       time.Time   `bson:"updatedAt" json:"-"`
}

// TourWithGuides is a tour with its guide references resolved to user
// documents. The resolved documents replace the raw ids in JSON.
type TourWithGuides struct {
	Tour      `bson:",inline"`
	GuideDocs []User `bson:"guideDocs" json:"guides"`
}

// TourStats is one row of the per-difficulty aggregation.
type TourStats struct {
	Difficulty string  `bson:"_id" json:"difficulty"`
	NumTours   int     `bson:"numTours" json:"numTours"`
	NumRatings int     `bson:"numRatings" json:"numRatings"`
	AvgRating  float64 `bson:"avgRating" json:"avgRating"`
	AvgPrice   float64 `bson:"avgPrice" json:"avgPrice"`
	MinPrice   float64 `bson:"minPrice" json:"minPrice"`
	MaxPrice   float64 `bson:"maxPrice" json:"maxPrice"`
}

// MonthlyPlanEntry is one month of the start-date aggregation.
type MonthlyPlanEntry struct {
	Month         int      `bson:"month" json:"month"`
	NumTourStarts int      `bson:"numTourStarts" json:"numTourStarts"`
	Tours         []string `bson:"tours" json:"tours"`
}

// TourDistance is a geoNear projection row.
type TourDistance struct {
	ID       string  `bson:"id" json:"id"`
	Name     string  `bson:"name" json:"name"`
	Distance float64 `bson:"distance" json:"distance"`
}
