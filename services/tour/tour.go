package tour

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"tourify/database/repository"
	"tourify/models"
	"tourify/utils"
)

const (
	overviewCacheKey = "tours:overview"
	overviewCacheTTL = 10 * time.Minute
)

// Earth radii used to convert a distance to radians for $centerSphere.
const (
	earthRadiusMiles = 3963.2
	earthRadiusKm    = 6378.1
)

// Service owns tour read paths shared by the API and the pages.
type Service struct {
	Repo repository.TourRepository
}

// Slugify derives the URL slug from a tour name.
func Slugify(name string) string {
	return slug.Make(name)
}

// Overview lists all visible tours for the landing page, cached in
// redis for a short window.
func (s *Service) Overview(ctx context.Context) ([]models.Tour, error) {
	if raw, ok := utils.CacheGet(ctx, overviewCacheKey); ok {
		var tours []models.Tour
		if err := json.Unmarshal([]byte(raw), &tours); err == nil {
			return tours, nil
		}
	}

	q := repository.NewListOptions()
	tours, err := s.Repo.List(ctx, q)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(tours); err == nil {
		utils.CacheSet(ctx, overviewCacheKey, string(raw), overviewCacheTTL)
	}
	return tours, nil
}

// InvalidateOverviewCache drops the cached landing-page listing after a
// tour mutation.
func (s *Service) InvalidateOverviewCache(ctx context.Context) {
	utils.CacheDel(ctx, overviewCacheKey)
}

// ParseLatLng parses a "lat,lng" path segment.
func ParseLatLng(latlng string) (float64, float64, error) {
	parts := strings.Split(latlng, ",")
	if len(parts) != 2 {
		return 0, 0, utils.NewAppError(http.StatusBadRequest, "please provide latitude and longitude in the format lat,lng")
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, errLng := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLat != nil || errLng != nil {
		return 0, 0, utils.NewAppError(http.StatusBadRequest, "please provide latitude and longitude in the format lat,lng")
	}
	return lat, lng, nil
}

// Within finds tours starting inside the given distance of a point.
func (s *Service) Within(ctx context.Context, distance float64, latlng, unit string) ([]models.Tour, error) {
	lat, lng, err := ParseLatLng(latlng)
	if err != nil {
		return nil, err
	}
	return s.Repo.Within(ctx, lat, lng, distance/SphereRadius(unit))
}

// Distances lists the distance from a point to every tour start.
func (s *Service) Distances(ctx context.Context, latlng, unit string) ([]models.TourDistance, error) {
	lat, lng, err := ParseLatLng(latlng)
	if err != nil {
		return nil, err
	}
	multiplier := 0.001
	if unit == "mi" {
		multiplier = 0.000621371
	}
	return s.Repo.Distances(ctx, lat, lng, multiplier)
}

// SphereRadius returns the earth radius for the unit, defaulting to km.
func SphereRadius(unit string) float64 {
	if unit == "mi" {
		return earthRadiusMiles
	}
	return earthRadiusKm
}
