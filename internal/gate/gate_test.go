package gate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/crashpipe/api"
	"github.com/momentics/crashpipe/internal/gate"
)

type release struct {
	sent      []string
	discarded []string
}

func (r *release) fn(report *api.Report, send bool) {
	if send {
		r.sent = append(r.sent, report.ID)
	} else {
		r.discarded = append(r.discarded, report.ID)
	}
}

func TestGate_PassThroughWithoutPredicate(t *testing.T) {
	rel := &release{}
	g := gate.New(rel.fn)
	assert.True(t, g.PassThrough())
	assert.False(t, g.Evaluate(&api.Report{ID: "r1"}))
	assert.Zero(t, g.Pending())
}

func TestGate_HoldAndDecide(t *testing.T) {
	rel := &release{}
	g := gate.New(rel.fn)
	g.SetPredicate(func(*api.Report) bool { return true })

	r1 := &api.Report{ID: "r1"}
	require.True(t, g.Evaluate(r1))
	assert.Equal(t, api.StateConfirmationPending, r1.State)
	assert.Equal(t, 1, g.Pending())

	require.NoError(t, g.Decide("r1", gate.Send))
	assert.Equal(t, []string{"r1"}, rel.sent)
	assert.Zero(t, g.Pending())

	// One-shot: a second decision on the same id is rejected.
	assert.ErrorIs(t, g.Decide("r1", gate.Send), api.ErrUnknownReport)
}

func TestGate_DontSend(t *testing.T) {
	rel := &release{}
	g := gate.New(rel.fn)
	g.SetPredicate(func(*api.Report) bool { return true })

	require.True(t, g.Evaluate(&api.Report{ID: "r1"}))
	require.NoError(t, g.Decide("r1", gate.DontSend))
	assert.Empty(t, rel.sent)
	assert.Equal(t, []string{"r1"}, rel.discarded)
}

func TestGate_AlwaysSendDowngradesToPassThrough(t *testing.T) {
	rel := &release{}
	g := gate.New(rel.fn)
	g.SetPredicate(func(*api.Report) bool { return true })

	require.True(t, g.Evaluate(&api.Report{ID: "r1"}))
	require.NoError(t, g.Decide("r1", gate.AlwaysSend))
	assert.True(t, g.PassThrough())

	// Subsequent reports bypass the gate without re-prompting.
	assert.False(t, g.Evaluate(&api.Report{ID: "r2"}))
	assert.Zero(t, g.Pending())
}

func TestGate_DecideAllPreservesOrder(t *testing.T) {
	rel := &release{}
	g := gate.New(rel.fn)
	g.SetPredicate(func(*api.Report) bool { return true })

	for _, id := range []string{"a", "b", "c"} {
		require.True(t, g.Evaluate(&api.Report{ID: id}))
	}
	g.DecideAll(gate.Send)
	assert.Equal(t, []string{"a", "b", "c"}, rel.sent)
}

func TestGate_PanickingPredicateIsNoHold(t *testing.T) {
	rel := &release{}
	g := gate.New(rel.fn)
	g.SetPredicate(func(*api.Report) bool { panic("bad predicate") })

	assert.False(t, g.Evaluate(&api.Report{ID: "r1"}))
	assert.Zero(t, g.Pending())
}
