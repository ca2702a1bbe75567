package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routine-planner/internal/events"
	"routine-planner/internal/model"
)

func TestGrantRollsOverRepeatedly(t *testing.T) {
	profiles := newFakeProfileStore()
	profiles.profiles[7] = model.Profile{UserID: 7, Points: 90, Level: 3}
	bus := events.NewBus(8)
	svc := NewRewardService(profiles, bus, zerolog.Nop())

	p, gained, err := svc.Grant(context.Background(), 7, 230)
	require.NoError(t, err)
	assert.Equal(t, 3, gained)
	assert.Equal(t, model.Profile{UserID: 7, Points: 20, Level: 6}, p)
	assert.Equal(t, p, profiles.get(7))

	evts := drain(bus)
	require.Len(t, evts, 2)
	assert.Equal(t, events.KindProfileChanged, evts[0].Kind)
	assert.Equal(t, events.KindLevelUp, evts[1].Kind)
}

func TestGrantWriteFailure(t *testing.T) {
	profiles := newFakeProfileStore()
	profiles.writeErr = errors.New("read only")
	bus := events.NewBus(8)
	svc := NewRewardService(profiles, bus, zerolog.Nop())

	_, _, err := svc.Grant(context.Background(), 1, 20)
	assert.Error(t, err)
	assert.Empty(t, drain(bus))
}

func TestProfileView(t *testing.T) {
	profiles := newFakeProfileStore()
	profiles.profiles[2] = model.Profile{UserID: 2, Points: 35, Level: 4}
	svc := NewRewardService(profiles, nil, zerolog.Nop())

	view, err := svc.Profile(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, ProfileView{Level: 4, Points: 35, ToNextLevel: 65}, view)

	view, err = svc.Profile(context.Background(), 99)
	require.NoError(t, err)
	assert.Equal(t, ProfileView{Level: 1, Points: 0, ToNextLevel: 100}, view)
}
