// Package geometry computes label points and sizes for boundary polygons.
package geometry

import (
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// EarthRadiusKm is the mean earth radius used for area conversion.
const EarthRadiusKm = 6371.0088

// LatLon is a label location in map (latitude, longitude) order.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Centroid returns the planar area-weighted centroid of g as (lat, lon).
// Degenerate geometries fall back to the vertex average computed by orb.
func Centroid(g orb.Geometry) LatLon {
	p, _ := planar.CentroidArea(g)
	return LatLon{Lat: p.Lat(), Lon: p.Lon()}
}

// AreaKm2 returns the geodesic area of a polygon or multipolygon in square
// kilometres. Other geometry types have no area.
func AreaKm2(g orb.Geometry) float64 {
	var steradians float64
	switch v := g.(type) {
	case orb.Polygon:
		steradians = polygonArea(v)
	case orb.MultiPolygon:
		for _, p := range v {
			steradians += polygonArea(p)
		}
	default:
		return 0
	}
	return steradians * EarthRadiusKm * EarthRadiusKm
}

func polygonArea(p orb.Polygon) float64 {
	var area float64
	for i, r := range p {
		a := ringArea(r)
		if i == 0 {
			area += a
		} else {
			area -= a
		}
	}
	if area < 0 {
		return 0
	}
	return area
}

// ringArea is the unsigned spherical area enclosed by r, taking the smaller
// of the two regions the ring bounds.
func ringArea(r orb.Ring) float64 {
	if r.Closed() {
		r = r[:len(r)-1]
	}
	if len(r) < 3 {
		return 0
	}

	pts := make([]s2.Point, 0, len(r))
	for _, p := range r {
		pts = append(pts, s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat(), p.Lon())))
	}
	loop := s2.LoopFromPoints(pts)
	loop.Normalize()
	return loop.Area()
}
