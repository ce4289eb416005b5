package services

import (
	"math"
	"time"

	"handoff/internal/core/domain/model/kernel"
)

// MinutesPerKm is the flat travel pace used for arrival estimates.
const MinutesPerKm = 2.0

// EstimateArrival returns departure plus the haversine distance from origin
// to destination at MinutesPerKm, rounded up to whole minutes.
func EstimateArrival(origin, destination kernel.GeoPoint, departure time.Time) (time.Time, error) {
	km, err := origin.DistanceKm(destination)
	if err != nil {
		return time.Time{}, err
	}
	minutes := math.Ceil(km * MinutesPerKm)
	return departure.Add(time.Duration(minutes) * time.Minute), nil
}
