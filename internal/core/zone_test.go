package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echo-corridor/internal/config"
	"echo-corridor/internal/engine/ecs"
)

func newZones() *ZoneMachine {
	return NewZoneMachine(config.DefaultConfig().Zone, nil)
}

func reasonOf(t *testing.T, err error) ResetReason {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrReset))
	var re *ResetError
	require.True(t, errors.As(err, &re))
	return re.Reason
}

func TestZoneStrings(t *testing.T) {
	assert.Equal(t, "intro", ZoneIntro.String())
	assert.Equal(t, "corridor", ZoneCorridor.String())
	assert.Equal(t, "endgame", ZoneEndgame.String())
	b, err := ZoneEndgame.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "endgame", string(b))
}

func TestIntroTriggerPlane(t *testing.T) {
	m := newZones()
	assert.False(t, m.CheckIntro(0))
	assert.False(t, m.CheckIntro(-2))
	assert.True(t, m.CheckIntro(-2.01))
	assert.Equal(t, ZoneCorridor, m.Zone())

	// fires once
	assert.False(t, m.CheckIntro(-5))
}

func TestEndgameOnlyFromCorridor(t *testing.T) {
	m := newZones()
	assert.False(t, m.EnterEndgame())
	assert.Equal(t, ZoneIntro, m.Zone())

	m.CheckIntro(-3)
	assert.True(t, m.EnterEndgame())
	assert.Equal(t, ZoneEndgame, m.Zone())
	assert.False(t, m.EnterEndgame())
}

func TestResetConditions(t *testing.T) {
	m := newZones()

	// the intro room sits behind the reset plane
	assert.NoError(t, m.CheckReset(ecs.Vector3{Z: 8}, ecs.Vector3{}, false))
	assert.Equal(t, ReasonOutOfBounds, reasonOf(t, m.CheckReset(ecs.Vector3{X: 13}, ecs.Vector3{}, false)))

	m.CheckIntro(-3)
	assert.NoError(t, m.CheckReset(ecs.Vector3{Z: 3}, ecs.Vector3{}, false))
	assert.Equal(t, ReasonWalkedBack, reasonOf(t, m.CheckReset(ecs.Vector3{Z: 4.5}, ecs.Vector3{}, false)))
	assert.Equal(t, ReasonOutOfBounds, reasonOf(t, m.CheckReset(ecs.Vector3{X: -12.5, Z: -40}, ecs.Vector3{}, false)))

	void := ecs.Vector3{Y: 2, Z: -300}
	// void contact only counts in the endgame
	assert.NoError(t, m.CheckReset(ecs.Vector3{Z: -299}, void, true))

	m.EnterEndgame()
	assert.NoError(t, m.CheckReset(ecs.Vector3{Z: -290}, void, true))
	assert.Equal(t, ReasonVoidContact, reasonOf(t, m.CheckReset(ecs.Vector3{Y: 1.6, Z: -299}, void, true)))
}

func TestResetErrorMessage(t *testing.T) {
	err := &ResetError{Reason: ReasonGameOver}
	assert.Equal(t, "simulation reset: game_over", err.Error())
}
