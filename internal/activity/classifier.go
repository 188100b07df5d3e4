package activity

// Classify infers an activity from local hour and speed (m/s).
// Rules are evaluated in priority order, first match wins. The thresholds
// are product behavior; changing them changes what users get matched on.
func Classify(hour int, speedMps float64) Detection {
	if speedMps > 1.5 {
		return Detection{
			ActivityType: ActivityCommute,
			VenueType:    VenueTransit,
			Confidence:   0.8,
		}
	}

	if hour >= 7 && hour <= 10 && speedMps < 0.5 {
		return Detection{
			ActivityType: ActivityCoffee,
			VenueType:    VenueCafe,
			Confidence:   0.7,
		}
	}

	if hour >= 11 && hour <= 14 {
		return Detection{
			ActivityType: ActivityLunch,
			VenueType:    VenueRestaurant,
			Confidence:   0.75,
		}
	}

	if hour >= 17 && hour <= 21 {
		return Detection{
			ActivityType: ActivityDinner,
			VenueType:    VenueRestaurant,
			Confidence:   0.75,
		}
	}

	if hour >= 6 && hour <= 9 && speedMps > 1.0 && speedMps < 3.0 {
		return Detection{
			ActivityType: ActivityExercise,
			VenueType:    VenueOutdoor,
			Confidence:   0.8,
		}
	}

	return Detection{
		ActivityType: ActivityLeisure,
		Confidence:   0.5,
	}
}
