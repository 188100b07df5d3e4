package karma

// Level thresholds and names follow the community ladder. Levels are 1
// through 10; the thresholds slice is indexed so thresholds[level] is the
// balance needed for the next level.
var (
	levelThresholds = []int{0, 50, 150, 300, 500, 1000, 2000, 5000, 10000, 25000, 50000}

	levelNames = []string{
		"Newcomer",
		"Neighbor",
		"Friend",
		"Helper",
		"Guardian",
		"Champion",
		"Hero",
		"Legend",
		"Master",
		"Grandmaster",
	}
)

// Level maps a karma balance to its level, 1 through 10.
func Level(balance int) int {
	for level := 1; level < len(levelThresholds)-1; level++ {
		if balance < levelThresholds[level] {
			return level
		}
	}
	return 10
}

// LevelName returns the display name for a level.
func LevelName(level int) string {
	if level < 1 || level > len(levelNames) {
		return levelNames[len(levelNames)-1]
	}
	return levelNames[level-1]
}

// NextLevelAt returns the balance needed to reach the next level.
func NextLevelAt(level int) int {
	if level < 0 || level >= len(levelThresholds) {
		return 100000
	}
	return levelThresholds[level]
}
