package domain

// Conviction / confidence labels used across suggestions and reviews.
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// Trade directions.
const (
	DirectionLong  = "long"
	DirectionShort = "short"
)

// Sector impact directions.
const (
	ImpactPositive = "positive"
	ImpactNegative = "negative"
	ImpactNeutral  = "neutral"
)

// ValidLevel reports whether s is one of the low/medium/high labels.
func ValidLevel(s string) bool {
	return s == LevelLow || s == LevelMedium || s == LevelHigh
}

// ValidDirection reports whether s is a valid trade direction.
func ValidDirection(s string) bool {
	return s == DirectionLong || s == DirectionShort
}

// ValidImpact reports whether s is a valid sector impact direction.
func ValidImpact(s string) bool {
	return s == ImpactPositive || s == ImpactNegative || s == ImpactNeutral
}
