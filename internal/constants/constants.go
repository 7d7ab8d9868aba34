package constants

import "time"

// Session and context keys
const (
	SessionCookieName = "growmap_session"
	SessionMaxAge     = 24 * time.Hour

	ContextKeyUserID   = "user_id"
	ContextKeyUsername = "username"
	ContextKeyMap      = "garden_map"

	SessionKeyGeoLat  = "geo_lat"
	SessionKeyGeoLon  = "geo_lon"
	SessionKeyGeoCity = "geo_city"
)

// Credentials
const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 12
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Maps and objects
const (
	MaxMapNameLength = 100
	MaxMapDimension  = 1000.0
	MinPolygonPoints = 3

	// Plants closer than this (meters, center to center) are checked for compatibility.
	ConflictDistance = 0.8
)

// Analytics
const (
	AnalyticsWindowDays   = 7
	HighWateringThreshold = 6
)

const DateLayout = "2006-01-02"
