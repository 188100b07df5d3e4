package synchronicity

// Score combines distance, recency and habit strength into a confidence
// value. Base 0.5, additive bonuses, capped at 1.0.
//
//	distance:  mean distance to the matched users
//	recency:   mean minutes since their activity was detected
//	frequency: the requesting user's pattern frequency for this
//	           (day, hour, activity) slot, 0 when no pattern exists
func Score(avgDistanceMeters, avgAgeMinutes, patternFrequency float64) float64 {
	score := 0.5

	switch {
	case avgDistanceMeters < 100:
		score += 0.3
	case avgDistanceMeters < 300:
		score += 0.2
	case avgDistanceMeters < 500:
		score += 0.1
	}

	switch {
	case avgAgeMinutes < 5:
		score += 0.2
	case avgAgeMinutes < 15:
		score += 0.1
	}

	if patternFrequency > 0.5 {
		score += 0.1
	}

	if score > 1.0 {
		return 1.0
	}
	return score
}
