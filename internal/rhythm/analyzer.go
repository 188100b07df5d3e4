// internal/rhythm/analyzer.go

package rhythm

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/spontanapp/spontan-backend/internal/activity"
)

// The analyzer derives a rhythm profile from raw observations. All
// functions are pure; the service wires them to storage.

// EstimateWakeTime averages the hour and minute of morning observations
// (05:00 to 10:59). Nil when the user has no morning activity.
func EstimateWakeTime(observations []*activity.Observation) *string {
	var hourSum, minuteSum float64
	count := 0

	for _, obs := range observations {
		hour := obs.DetectedAt.Hour()
		if hour >= 5 && hour <= 10 {
			hourSum += float64(hour)
			minuteSum += float64(obs.DetectedAt.Minute())
			count++
		}
	}

	if count == 0 {
		return nil
	}

	t := fmt.Sprintf("%02d:%02d:00", int(hourSum/float64(count)), int(minuteSum/float64(count)))
	return &t
}

// EstimateSleepTime averages late-night observations (22:00 onward and up
// to 02:59), shifting post-midnight hours by 24 so the mean wraps
// correctly.
func EstimateSleepTime(observations []*activity.Observation) *string {
	var hourSum float64
	count := 0

	for _, obs := range observations {
		hour := obs.DetectedAt.Hour()
		if hour >= 22 || hour <= 2 {
			if hour < 12 {
				hour += 24
			}
			hourSum += float64(hour)
			count++
		}
	}

	if count == 0 {
		return nil
	}

	avg := hourSum / float64(count)
	if avg >= 24 {
		avg -= 24
	}

	t := fmt.Sprintf("%02d:00:00", int(avg))
	return &t
}

// EstimateLunchTime averages midday lunch and coffee observations (11:00
// to 15:59). Requires at least three observations to say anything.
func EstimateLunchTime(observations []*activity.Observation) *string {
	var hourSum float64
	count := 0

	for _, obs := range observations {
		hour := obs.DetectedAt.Hour()
		isMeal := obs.ActivityType == activity.ActivityLunch || obs.ActivityType == activity.ActivityCoffee
		if isMeal && hour >= 11 && hour <= 15 {
			hourSum += float64(hour)
			count++
		}
	}

	if count < 3 {
		return nil
	}

	t := fmt.Sprintf("%02d:00:00", int(hourSum/float64(count)))
	return &t
}

var socialActivities = map[activity.ActivityType]bool{
	activity.ActivityCoffee:  true,
	activity.ActivityLunch:   true,
	activity.ActivityDinner:  true,
	activity.ActivitySocial:  true,
	activity.ActivityLeisure: true,
}

// DetectSocialPeaks returns the five hours with the most social activity,
// busiest first.
func DetectSocialPeaks(observations []*activity.Observation) []int64 {
	counts := make(map[int]int)
	for _, obs := range observations {
		if socialActivities[obs.ActivityType] {
			counts[obs.DetectedAt.Hour()]++
		}
	}
	return topHours(counts, 5)
}

// CalculateEnergyPeaks returns the three hours with the most activity of
// any kind.
func CalculateEnergyPeaks(observations []*activity.Observation) []int64 {
	counts := make(map[int]int)
	for _, obs := range observations {
		counts[obs.DetectedAt.Hour()]++
	}
	return topHours(counts, 3)
}

func topHours(counts map[int]int, limit int) []int64 {
	hours := make([]int, 0, len(counts))
	for hour := range counts {
		hours = append(hours, hour)
	}
	sort.Slice(hours, func(i, j int) bool {
		if counts[hours[i]] != counts[hours[j]] {
			return counts[hours[i]] > counts[hours[j]]
		}
		return hours[i] < hours[j]
	})

	if len(hours) > limit {
		hours = hours[:limit]
	}

	result := make([]int64, len(hours))
	for i, hour := range hours {
		result[i] = int64(hour)
	}
	return result
}

// DetectWorkoutPattern lists every observed exercise session.
func DetectWorkoutPattern(observations []*activity.Observation) WorkoutPattern {
	pattern := WorkoutPattern{}
	for _, obs := range observations {
		if obs.ActivityType != activity.ActivityExercise {
			continue
		}
		pattern = append(pattern, WorkoutEntry{
			DayOfWeek: int(obs.DetectedAt.Weekday()),
			Hour:      obs.DetectedAt.Hour(),
			Location:  obs.LocationName,
		})
	}
	return pattern
}

// DetectCommutePattern lists every observed commute with its inferred
// direction.
func DetectCommutePattern(observations []*activity.Observation) CommutePattern {
	pattern := CommutePattern{}
	for _, obs := range observations {
		if obs.ActivityType != activity.ActivityCommute {
			continue
		}
		pattern = append(pattern, CommuteEntry{
			DayOfWeek: int(obs.DetectedAt.Weekday()),
			Hour:      obs.DetectedAt.Hour(),
			Direction: inferCommuteDirection(obs.DetectedAt.Hour()),
		})
	}
	return pattern
}

func inferCommuteDirection(hour int) CommuteDirection {
	switch {
	case hour >= 6 && hour <= 10:
		return CommuteToWork
	case hour >= 15 && hour <= 19:
		return CommuteFromWork
	default:
		return CommuteOther
	}
}

// ClassifyRhythmType buckets the user from their wake and sleep estimates,
// falling back to where their social peaks sit.
func ClassifyRhythmType(wakeTime, sleepTime *string, socialPeaks []int64) RhythmType {
	if wakeTime == nil || sleepTime == nil {
		return RhythmUnknown
	}

	wakeHour := parseHour(*wakeTime)
	sleepHour := parseHour(*sleepTime)

	if wakeHour <= 6 && sleepHour <= 22 {
		return RhythmEarlyBird
	}
	if wakeHour >= 9 && sleepHour <= 2 {
		return RhythmNightOwl
	}

	var evening, morning bool
	for _, peak := range socialPeaks {
		if peak >= 20 {
			evening = true
		}
		if peak <= 10 {
			morning = true
		}
	}

	if evening && !morning {
		return RhythmNightOwl
	}
	if morning && !evening {
		return RhythmEarlyBird
	}
	return RhythmFlexible
}

func parseHour(t string) int {
	var hour int
	fmt.Sscanf(t, "%d:", &hour)
	return hour
}

// ExtractCoffeeSpots returns up to five distinct named coffee locations,
// in first-seen order.
func ExtractCoffeeSpots(observations []*activity.Observation) []string {
	seen := make(map[string]bool)
	spots := []string{}

	for _, obs := range observations {
		if obs.ActivityType != activity.ActivityCoffee || obs.LocationName == nil {
			continue
		}
		name := *obs.LocationName
		if seen[name] {
			continue
		}
		seen[name] = true
		spots = append(spots, name)
		if len(spots) == 5 {
			break
		}
	}

	return spots
}

// ExtractFavoriteVenues returns the ten most-visited named locations.
func ExtractFavoriteVenues(observations []*activity.Observation) []string {
	counts := make(map[string]int)
	order := []string{}

	for _, obs := range observations {
		if obs.LocationName == nil {
			continue
		}
		name := *obs.LocationName
		if counts[name] == 0 {
			order = append(order, name)
		}
		counts[name]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > 10 {
		order = order[:10]
	}
	return order
}

// AnalyzeWeekendRoutine summarizes Saturday and Sunday activity.
func AnalyzeWeekendRoutine(observations []*activity.Observation) WeekendRoutine {
	var weekend []*activity.Observation
	for _, obs := range observations {
		day := obs.DetectedAt.Weekday()
		if day == time.Saturday || day == time.Sunday {
			weekend = append(weekend, obs)
		}
	}

	routine := WeekendRoutine{TotalActivities: len(weekend)}
	if len(weekend) == 0 {
		return routine
	}

	counts := make(map[activity.ActivityType]int)
	var hourSum float64
	for _, obs := range weekend {
		counts[obs.ActivityType]++
		hourSum += float64(obs.DetectedAt.Hour())
	}

	var best activity.ActivityType
	for activityType, count := range counts {
		if best == "" || count > counts[best] || (count == counts[best] && activityType < best) {
			best = activityType
		}
	}
	mostCommon := string(best)
	routine.MostCommonActivity = &mostCommon

	start := fmt.Sprintf("%02d:00", int(hourSum/float64(len(weekend))))
	routine.AverageStartTime = &start

	return routine
}

// RoutineSimilarity weighs rhythm type (0.4), overlapping social peaks
// (0.3) and overlapping favorite venues (0.3).
func RoutineSimilarity(a, b *UserRhythm) float64 {
	score := 0.0

	if a.RhythmType == b.RhythmType {
		score += 0.4
	}
	score += TimeOverlap(a, b) * 0.3
	score += LocationOverlap(a, b) * 0.3

	return math.Min(score, 1.0)
}

// TimeOverlap is the fraction of shared social peaks.
func TimeOverlap(a, b *UserRhythm) float64 {
	shared := 0
	for _, peak := range a.SocialPeaks {
		for _, other := range b.SocialPeaks {
			if peak == other {
				shared++
				break
			}
		}
	}
	return float64(shared) / maxLen(len(a.SocialPeaks), len(b.SocialPeaks))
}

// LocationOverlap is the fraction of shared favorite venues.
func LocationOverlap(a, b *UserRhythm) float64 {
	return float64(len(sharedStrings(a.FavoriteVenues, b.FavoriteVenues))) /
		maxLen(len(a.FavoriteVenues), len(b.FavoriteVenues))
}

func maxLen(a, b int) float64 {
	if a < b {
		a = b
	}
	if a < 1 {
		a = 1
	}
	return float64(a)
}

func sharedStrings(a, b []string) []string {
	shared := []string{}
	for _, s := range a {
		for _, other := range b {
			if s == other {
				shared = append(shared, s)
				break
			}
		}
	}
	return shared
}

// SharedRoutines renders the human-readable overlap between two rhythms.
func SharedRoutines(a, b *UserRhythm) []string {
	routines := []string{}

	if a.RhythmType == b.RhythmType {
		routines = append(routines, fmt.Sprintf("Both are %ss", a.RhythmType))
	}

	venues := sharedStrings(a.FavoriteVenues, b.FavoriteVenues)
	if len(venues) > 0 {
		limit := len(venues)
		if limit > 3 {
			limit = 3
		}
		routines = append(routines, "Visit same venues: "+strings.Join(venues[:limit], ", "))
	}

	coffee := sharedStrings(a.CoffeeSpots, b.CoffeeSpots)
	if len(coffee) > 0 {
		routines = append(routines, "Same coffee spots: "+coffee[0])
	}

	return routines
}

// SuggestMeetup proposes a venue and time from the overlap. Nil when the
// rhythms share nothing.
func SuggestMeetup(a, b *UserRhythm, sharedRoutines []string) *string {
	if len(sharedRoutines) == 0 {
		return nil
	}

	venues := sharedStrings(a.FavoriteVenues, b.FavoriteVenues)
	if len(venues) == 0 {
		suggestion := "Coffee together at mutual favorite time"
		return &suggestion
	}

	bestTime := int64(12)
search:
	for _, peak := range a.SocialPeaks {
		for _, other := range b.SocialPeaks {
			if peak == other {
				bestTime = peak
				break search
			}
		}
	}

	suggestion := fmt.Sprintf("Meet at %s around %d:00", venues[0], bestTime)
	return &suggestion
}
