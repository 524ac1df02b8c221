package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusOpen, StatusInProgress, true},
		{StatusOpen, StatusResolved, false},
		{StatusOpen, StatusOnHold, true},
		{StatusOpen, StatusCanceled, true},
		{StatusInProgress, StatusResolved, true},
		{StatusInProgress, StatusClosed, false},
		{StatusResolved, StatusInProgress, true},
		{StatusResolved, StatusClosed, true},
		{StatusOnHold, StatusInProgress, true},
		{StatusOnHold, StatusResolved, false},
		{StatusClosed, StatusOpen, false},
		{StatusCanceled, StatusOpen, false},
		{StatusOpen, StatusOpen, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.want, CanTransition(tc.from, tc.to))
		})
	}
}

func TestTerminalStatesHaveNoEdges(t *testing.T) {
	for _, terminal := range []Status{StatusClosed, StatusCanceled} {
		assert.True(t, IsTerminal(terminal))
		assert.Empty(t, NextStatuses(terminal))
		for _, to := range Statuses {
			assert.False(t, CanTransition(terminal, to), "%s -> %s", terminal, to)
		}
	}
	assert.False(t, IsTerminal(StatusOpen))
	assert.False(t, IsTerminal(Status("Archived")))
}

func TestNextStatusesOrder(t *testing.T) {
	assert.Equal(t, []Status{StatusInProgress, StatusCanceled}, NextStatuses(StatusOnHold))
	assert.Equal(t, []Status{StatusInProgress, StatusOnHold, StatusCanceled}, NextStatuses(StatusOpen))
	assert.Equal(t, []Status{StatusClosed, StatusInProgress}, NextStatuses(StatusResolved))
}

func TestNextStatusesAgreesWithCanTransition(t *testing.T) {
	for _, from := range Statuses {
		next := map[Status]bool{}
		for _, s := range NextStatuses(from) {
			next[s] = true
		}
		for _, to := range Statuses {
			assert.Equal(t, next[to], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestNextStatusesReturnsCopy(t *testing.T) {
	next := NextStatuses(StatusOpen)
	next[0] = StatusClosed
	assert.False(t, CanTransition(StatusOpen, StatusClosed))
	assert.Equal(t, StatusInProgress, NextStatuses(StatusOpen)[0])
}

func TestUnknownFromIsDenied(t *testing.T) {
	assert.False(t, CanTransition(Status("Draft"), StatusOpen))
	assert.Empty(t, NextStatuses(Status("Draft")))
	assert.False(t, Status("Draft").Valid())
	assert.True(t, StatusOnHold.Valid())
}

func TestIdempotence(t *testing.T) {
	assert.Equal(t, CanTransition(StatusResolved, StatusInProgress), CanTransition(StatusResolved, StatusInProgress))
	assert.Equal(t, NextStatuses(StatusInProgress), NextStatuses(StatusInProgress))
}

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"Open":        StatusOpen,
		"in progress": StatusInProgress,
		"in_progress": StatusInProgress,
		"ON_HOLD":     StatusOnHold,
		"on-hold":     StatusOnHold,
		" Resolved ":  StatusResolved,
		"canceled":    StatusCanceled,
		"cancelled":   StatusCanceled,
	}
	for in, want := range cases {
		got, ok := ParseStatus(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "pending", "closedd"} {
		_, ok := ParseStatus(bad)
		assert.False(t, ok, bad)
	}
	assert.Equal(t, StatusOpen, Initial)
}
