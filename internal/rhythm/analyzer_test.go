package rhythm

import (
	"testing"
	"time"

	"github.com/spontanapp/spontan-backend/internal/activity"
)

func obs(activityType activity.ActivityType, day time.Time, hour, minute int, location string) *activity.Observation {
	o := &activity.Observation{
		ActivityType: activityType,
		DetectedAt:   time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC),
	}
	if location != "" {
		o.LocationName = &location
	}
	return o
}

// 2025-03-10 is a Monday, 2025-03-15 a Saturday.
var monday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
var saturday = time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

func TestEstimateWakeTime(t *testing.T) {
	observations := []*activity.Observation{
		obs(activity.ActivityCoffee, monday, 7, 30, ""),
		obs(activity.ActivityCommute, monday, 8, 30, ""),
		obs(activity.ActivityDinner, monday, 19, 0, ""),
	}

	// Hours 7 and 8 floor to 7, minutes average to 30.
	got := EstimateWakeTime(observations)
	if got == nil || *got != "07:30:00" {
		t.Errorf("Expected 07:30:00, got %v", got)
	}

	if EstimateWakeTime([]*activity.Observation{obs(activity.ActivityDinner, monday, 19, 0, "")}) != nil {
		t.Error("Expected nil without morning observations")
	}
}

func TestEstimateSleepTimeWrapsAroundMidnight(t *testing.T) {
	observations := []*activity.Observation{
		obs(activity.ActivityLeisure, monday, 23, 0, ""),
		obs(activity.ActivityLeisure, monday, 1, 0, ""),
	}

	// 23 and 25 average to 24, which wraps to 00.
	got := EstimateSleepTime(observations)
	if got == nil || *got != "00:00:00" {
		t.Errorf("Expected 00:00:00, got %v", got)
	}
}

func TestEstimateLunchTimeNeedsThreeObservations(t *testing.T) {
	observations := []*activity.Observation{
		obs(activity.ActivityLunch, monday, 12, 0, ""),
		obs(activity.ActivityCoffee, monday, 13, 0, ""),
	}

	if EstimateLunchTime(observations) != nil {
		t.Error("Expected nil under three midday observations")
	}

	observations = append(observations, obs(activity.ActivityLunch, monday, 12, 0, ""))
	got := EstimateLunchTime(observations)
	if got == nil || *got != "12:00:00" {
		t.Errorf("Expected 12:00:00, got %v", got)
	}
}

func TestDetectSocialPeaks(t *testing.T) {
	observations := []*activity.Observation{
		obs(activity.ActivityCoffee, monday, 9, 0, ""),
		obs(activity.ActivityCoffee, monday, 9, 15, ""),
		obs(activity.ActivityLunch, monday, 12, 0, ""),
		obs(activity.ActivityCommute, monday, 8, 0, ""), // not social
	}

	peaks := DetectSocialPeaks(observations)
	if len(peaks) != 2 {
		t.Fatalf("Expected 2 peaks, got %v", peaks)
	}
	if peaks[0] != 9 || peaks[1] != 12 {
		t.Errorf("Expected busiest hour first, got %v", peaks)
	}
}

func TestClassifyRhythmType(t *testing.T) {
	early := "06:00:00"
	earlyBed := "22:00:00"
	late := "09:30:00"
	lateBed := "01:00:00"

	tests := []struct {
		name  string
		wake  *string
		sleep *string
		peaks []int64
		want  RhythmType
	}{
		{"missing data", nil, &earlyBed, nil, RhythmUnknown},
		{"early bird", &early, &earlyBed, nil, RhythmEarlyBird},
		{"night owl", &late, &lateBed, nil, RhythmNightOwl},
		{"evening peaks lean night owl", &late, &earlyBed, []int64{20, 21}, RhythmNightOwl},
		{"mixed peaks stay flexible", &late, &earlyBed, []int64{9, 21}, RhythmFlexible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyRhythmType(tt.wake, tt.sleep, tt.peaks); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestExtractCoffeeSpots(t *testing.T) {
	observations := []*activity.Observation{
		obs(activity.ActivityCoffee, monday, 9, 0, "Prolog"),
		obs(activity.ActivityCoffee, monday, 9, 0, "Prolog"),
		obs(activity.ActivityCoffee, monday, 10, 0, "Coffee Collective"),
		obs(activity.ActivityLunch, monday, 12, 0, "Torvehallerne"),
	}

	spots := ExtractCoffeeSpots(observations)
	if len(spots) != 2 || spots[0] != "Prolog" || spots[1] != "Coffee Collective" {
		t.Errorf("Expected distinct coffee spots in first-seen order, got %v", spots)
	}
}

func TestExtractFavoriteVenues(t *testing.T) {
	observations := []*activity.Observation{
		obs(activity.ActivityCoffee, monday, 9, 0, "Prolog"),
		obs(activity.ActivityLunch, monday, 12, 0, "Torvehallerne"),
		obs(activity.ActivityLunch, monday, 12, 30, "Torvehallerne"),
	}

	venues := ExtractFavoriteVenues(observations)
	if len(venues) != 2 || venues[0] != "Torvehallerne" {
		t.Errorf("Expected most-visited venue first, got %v", venues)
	}
}

func TestAnalyzeWeekendRoutine(t *testing.T) {
	observations := []*activity.Observation{
		obs(activity.ActivityLeisure, saturday, 11, 0, ""),
		obs(activity.ActivityLeisure, saturday, 13, 0, ""),
		obs(activity.ActivityCoffee, saturday, 10, 0, ""),
		obs(activity.ActivityCommute, monday, 8, 0, ""), // weekday, ignored
	}

	routine := AnalyzeWeekendRoutine(observations)
	if routine.TotalActivities != 3 {
		t.Errorf("Expected 3 weekend activities, got %d", routine.TotalActivities)
	}
	if routine.MostCommonActivity == nil || *routine.MostCommonActivity != "leisure" {
		t.Errorf("Expected leisure as most common, got %v", routine.MostCommonActivity)
	}
	if routine.AverageStartTime == nil || *routine.AverageStartTime != "11:00" {
		t.Errorf("Expected 11:00 average start, got %v", routine.AverageStartTime)
	}
}

func TestCommuteDirection(t *testing.T) {
	observations := []*activity.Observation{
		obs(activity.ActivityCommute, monday, 8, 0, ""),
		obs(activity.ActivityCommute, monday, 17, 0, ""),
		obs(activity.ActivityCommute, monday, 13, 0, ""),
	}

	pattern := DetectCommutePattern(observations)
	if len(pattern) != 3 {
		t.Fatalf("Expected 3 commutes, got %d", len(pattern))
	}
	if pattern[0].Direction != CommuteToWork || pattern[1].Direction != CommuteFromWork || pattern[2].Direction != CommuteOther {
		t.Errorf("Unexpected directions: %v", pattern)
	}
}

func TestRoutineSimilarity(t *testing.T) {
	a := &UserRhythm{
		RhythmType:     RhythmEarlyBird,
		SocialPeaks:    []int64{9, 12, 19},
		FavoriteVenues: []string{"Prolog", "Torvehallerne"},
	}
	b := &UserRhythm{
		RhythmType:     RhythmEarlyBird,
		SocialPeaks:    []int64{9, 12, 20},
		FavoriteVenues: []string{"Prolog", "Noma"},
	}

	// 0.4 type + (2/3)*0.3 social + (1/2)*0.3 venues = 0.75
	got := RoutineSimilarity(a, b)
	if got < 0.749 || got > 0.751 {
		t.Errorf("Expected similarity 0.75, got %v", got)
	}
}

func TestSuggestMeetup(t *testing.T) {
	a := &UserRhythm{
		RhythmType:     RhythmFlexible,
		SocialPeaks:    []int64{12, 19},
		FavoriteVenues: []string{"Prolog"},
		CoffeeSpots:    []string{"Prolog"},
	}
	b := &UserRhythm{
		RhythmType:     RhythmFlexible,
		SocialPeaks:    []int64{19},
		FavoriteVenues: []string{"Prolog"},
		CoffeeSpots:    []string{"Prolog"},
	}

	shared := SharedRoutines(a, b)
	if len(shared) != 3 {
		t.Fatalf("Expected 3 shared routines, got %v", shared)
	}

	suggestion := SuggestMeetup(a, b, shared)
	if suggestion == nil || *suggestion != "Meet at Prolog around 19:00" {
		t.Errorf("Unexpected suggestion: %v", suggestion)
	}

	if SuggestMeetup(a, b, nil) != nil {
		t.Error("Expected nil suggestion without shared routines")
	}
}
