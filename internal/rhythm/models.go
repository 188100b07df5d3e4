package rhythm

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"
)

// RhythmType classifies a user's daily pattern.
type RhythmType string

const (
	RhythmEarlyBird RhythmType = "early_bird"
	RhythmNightOwl  RhythmType = "night_owl"
	RhythmFlexible  RhythmType = "flexible"
	RhythmUnknown   RhythmType = "unknown"
)

// WorkoutEntry records one observed exercise session.
type WorkoutEntry struct {
	DayOfWeek int     `json:"day_of_week"`
	Hour      int     `json:"hour"`
	Location  *string `json:"location,omitempty"`
}

// CommuteDirection is inferred from the hour of a commute observation.
type CommuteDirection string

const (
	CommuteToWork   CommuteDirection = "to_work"
	CommuteFromWork CommuteDirection = "from_work"
	CommuteOther    CommuteDirection = "other"
)

// CommuteEntry records one observed commute.
type CommuteEntry struct {
	DayOfWeek int              `json:"day_of_week"`
	Hour      int              `json:"hour"`
	Direction CommuteDirection `json:"direction"`
}

// WeekendRoutine summarizes what a user does on Saturdays and Sundays.
type WeekendRoutine struct {
	MostCommonActivity *string `json:"most_common_activity"`
	AverageStartTime   *string `json:"average_start_time"`
	TotalActivities    int     `json:"total_activities"`
}

// WorkoutPattern and CommutePattern are stored as jsonb columns.
type WorkoutPattern []WorkoutEntry

type CommutePattern []CommuteEntry

func (p WorkoutPattern) Value() (driver.Value, error) { return jsonValue(p) }

func (p *WorkoutPattern) Scan(src interface{}) error { return jsonScan(src, p) }

func (p CommutePattern) Value() (driver.Value, error) { return jsonValue(p) }

func (p *CommutePattern) Scan(src interface{}) error { return jsonScan(src, p) }

func (r WeekendRoutine) Value() (driver.Value, error) { return jsonValue(r) }

func (r *WeekendRoutine) Scan(src interface{}) error { return jsonScan(src, r) }

func jsonValue(v interface{}) (driver.Value, error) {
	return json.Marshal(v)
}

func jsonScan(src, dst interface{}) error {
	if src == nil {
		return nil
	}
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, dst)
	case string:
		return json.Unmarshal([]byte(data), dst)
	default:
		return errors.New("unsupported jsonb source type")
	}
}

// UserRhythm is the derived daily-rhythm profile, recomputed wholesale
// from the last 30 days of observations.
type UserRhythm struct {
	UserID          string         `json:"user_id" db:"user_id"`
	WakeTime        *string        `json:"wake_time" db:"wake_time"`
	SleepTime       *string        `json:"sleep_time" db:"sleep_time"`
	LunchTime       *string        `json:"lunch_time" db:"lunch_time"`
	WorkoutPattern  WorkoutPattern `json:"workout_pattern" db:"workout_pattern"`
	CommutePattern  CommutePattern `json:"commute_pattern" db:"commute_pattern"`
	SocialPeaks     pq.Int64Array  `json:"social_peaks" db:"social_peaks"`
	RhythmType      RhythmType     `json:"rhythm_type" db:"rhythm_type"`
	EnergyPeaks     pq.Int64Array  `json:"energy_peaks" db:"energy_peaks"`
	CoffeeSpots     pq.StringArray `json:"coffee_spots" db:"coffee_spots"`
	FavoriteVenues  pq.StringArray `json:"favorite_venues" db:"favorite_venues"`
	WeekendRoutine  WeekendRoutine `json:"weekend_routine" db:"weekend_routine"`
	CalculatedAt    time.Time      `json:"calculated_at" db:"calculated_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}

// MirrorMatch pairs two users whose rhythms overlap strongly.
type MirrorMatch struct {
	UserID            string   `json:"user_id"`
	OverlapScore      float64  `json:"overlap_score"`
	SharedRoutines    []string `json:"shared_routines"`
	RoutineSimilarity float64  `json:"routine_similarity"`
	LocationOverlap   float64  `json:"location_overlap"`
	TimeOverlap       float64  `json:"time_overlap"`
	SuggestedMeetup   *string  `json:"suggested_meetup"`
}
