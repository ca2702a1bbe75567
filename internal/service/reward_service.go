package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"routine-planner/internal/events"
	"routine-planner/internal/model"
	"routine-planner/internal/planner"
)

// RewardService owns the points and level of every user.
type RewardService struct {
	profiles ProfileStore
	bus      *events.Bus
	log      zerolog.Logger
}

func NewRewardService(profiles ProfileStore, bus *events.Bus, log zerolog.Logger) *RewardService {
	return &RewardService{profiles: profiles, bus: bus, log: log.With().Str("component", "rewards").Logger()}
}

// Grant adds points to the user's profile, rolling every 100 points into a
// level. It returns the stored profile and the number of levels gained.
func (s *RewardService) Grant(ctx context.Context, userID uint, points int) (model.Profile, int, error) {
	current, err := s.profiles.ReadProfile(ctx, userID)
	if err != nil {
		return model.Profile{}, 0, fmt.Errorf("read profile: %w", err)
	}
	updated, gained := planner.ApplyReward(current, points)
	if err := s.profiles.WriteProfile(ctx, updated); err != nil {
		return model.Profile{}, 0, fmt.Errorf("write profile: %w", err)
	}

	s.log.Debug().Uint("user_id", userID).Int("points", updated.Points).Int("level", updated.Level).Msg("reward granted")
	s.bus.Publish(events.Event{Kind: events.KindProfileChanged, UserID: userID, Points: updated.Points, Level: updated.Level})
	if gained > 0 {
		s.bus.Publish(events.Event{Kind: events.KindLevelUp, UserID: userID, Points: updated.Points, Level: updated.Level})
	}
	return updated, gained, nil
}

// ProfileView is what the profile screen shows.
type ProfileView struct {
	Level       int
	Points      int
	ToNextLevel int
}

func (s *RewardService) Profile(ctx context.Context, userID uint) (ProfileView, error) {
	p, err := s.profiles.ReadProfile(ctx, userID)
	if err != nil {
		return ProfileView{}, fmt.Errorf("read profile: %w", err)
	}
	return ProfileView{Level: p.Level, Points: p.Points, ToNextLevel: planner.PointsToNextLevel(p)}, nil
}
