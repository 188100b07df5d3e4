package karma

// Multiplier boosts karma for help given under rough conditions. Emergency
// help always pays face value; night work doubles, bad weather stacks on
// top.
func Multiplier(hour int, metadata Metadata) float64 {
	if metadata != nil {
		if emergency, ok := metadata["emergency"].(bool); ok && emergency {
			return 1.0
		}
	}

	multiplier := 1.0

	if hour >= 22 || hour <= 6 {
		multiplier *= 2.0
	}

	if metadata != nil {
		switch metadata["weather"] {
		case "rain":
			multiplier *= 1.5
		case "storm":
			multiplier *= 2.0
		}
	}

	return multiplier
}
