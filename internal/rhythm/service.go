// internal/rhythm/service.go

package rhythm

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/spontanapp/spontan-backend/internal/activity"
)

// ObservationSource provides the raw observations the analyzer consumes.
type ObservationSource interface {
	GetObservationsSince(ctx context.Context, userID string, since time.Time) ([]*activity.Observation, error)
}

type Service interface {
	// AnalyzeUserRhythm recomputes the user's rhythm profile from their
	// recent observations. Returns nil when there is too little data to
	// say anything.
	AnalyzeUserRhythm(ctx context.Context, userID string) (*UserRhythm, error)

	GetRhythm(ctx context.Context, userID string) (*UserRhythm, error)

	// FindMirrorMatches compares the user's rhythm against everyone
	// else's and returns pairs scoring at least the threshold, best
	// first.
	FindMirrorMatches(ctx context.Context, userID string) ([]*MirrorMatch, error)
}

type Config struct {
	ObservationDays int
	MinObservations int
	MatchThreshold  float64
}

type service struct {
	repo         Repository
	observations ObservationSource
	cfg          Config
	now          func() time.Time
}

func NewService(repo Repository, observations ObservationSource, cfg Config) Service {
	if cfg.ObservationDays <= 0 {
		cfg.ObservationDays = 30
	}
	if cfg.MinObservations <= 0 {
		cfg.MinObservations = 5
	}
	if cfg.MatchThreshold == 0 {
		cfg.MatchThreshold = 0.6
	}

	return &service{
		repo:         repo,
		observations: observations,
		cfg:          cfg,
		now:          time.Now,
	}
}

func (s *service) AnalyzeUserRhythm(ctx context.Context, userID string) (*UserRhythm, error) {
	since := s.now().AddDate(0, 0, -s.cfg.ObservationDays)
	observations, err := s.observations.GetObservationsSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	if len(observations) < s.cfg.MinObservations {
		return nil, nil
	}

	wakeTime := EstimateWakeTime(observations)
	sleepTime := EstimateSleepTime(observations)
	socialPeaks := DetectSocialPeaks(observations)

	rhythm := &UserRhythm{
		UserID:         userID,
		WakeTime:       wakeTime,
		SleepTime:      sleepTime,
		LunchTime:      EstimateLunchTime(observations),
		WorkoutPattern: DetectWorkoutPattern(observations),
		CommutePattern: DetectCommutePattern(observations),
		SocialPeaks:    socialPeaks,
		RhythmType:     ClassifyRhythmType(wakeTime, sleepTime, socialPeaks),
		EnergyPeaks:    CalculateEnergyPeaks(observations),
		CoffeeSpots:    ExtractCoffeeSpots(observations),
		FavoriteVenues: ExtractFavoriteVenues(observations),
		WeekendRoutine: AnalyzeWeekendRoutine(observations),
		CalculatedAt:   s.now(),
	}

	if err := s.repo.UpsertRhythm(ctx, rhythm); err != nil {
		return nil, err
	}

	RecordAnalysis(string(rhythm.RhythmType))

	return rhythm, nil
}

func (s *service) GetRhythm(ctx context.Context, userID string) (*UserRhythm, error) {
	return s.repo.GetRhythm(ctx, userID)
}

func (s *service) FindMirrorMatches(ctx context.Context, userID string) ([]*MirrorMatch, error) {
	rhythm, err := s.repo.GetRhythm(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rhythm == nil {
		// First call seeds the profile; matching picks up next time.
		if _, err := s.AnalyzeUserRhythm(ctx, userID); err != nil {
			return nil, err
		}
		return []*MirrorMatch{}, nil
	}

	others, err := s.repo.ListOtherRhythms(ctx, userID)
	if err != nil {
		return nil, err
	}

	matches := []*MirrorMatch{}
	for _, other := range others {
		score, err := s.repo.Compatibility(ctx, rhythm.UserID, other.UserID)
		if err != nil {
			log.Printf("Failed to score rhythm compatibility %s/%s: %v", rhythm.UserID, other.UserID, err)
			continue
		}

		if score < s.cfg.MatchThreshold {
			continue
		}

		shared := SharedRoutines(rhythm, other)

		matches = append(matches, &MirrorMatch{
			UserID:            other.UserID,
			OverlapScore:      score,
			SharedRoutines:    shared,
			RoutineSimilarity: RoutineSimilarity(rhythm, other),
			LocationOverlap:   LocationOverlap(rhythm, other),
			TimeOverlap:       TimeOverlap(rhythm, other),
			SuggestedMeetup:   SuggestMeetup(rhythm, other, shared),
		})

		if err := s.repo.UpsertMirrorMatch(ctx, rhythm.UserID, other.UserID, score, shared); err != nil {
			log.Printf("Failed to save mirror match %s/%s: %v", rhythm.UserID, other.UserID, err)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].OverlapScore > matches[j].OverlapScore
	})

	RecordMirrorMatches(len(matches))

	return matches, nil
}
