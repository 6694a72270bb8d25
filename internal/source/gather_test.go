package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"art-advisor/internal/domain"
)

func TestGatherKeepsQuerySourceOrderAndAbsorbsFailures(t *testing.T) {
	good := &fakeSource{name: "good", results: map[string][]domain.Candidate{
		"q1": {cand("g1")},
		"q2": {cand("g2"), cand("shared")},
	}}
	broken := &fakeSource{name: "broken", err: domain.ErrSourceUnavailable}
	other := &fakeSource{name: "other", results: map[string][]domain.Candidate{
		"q1": {cand("shared"), cand("o1")},
	}}

	lists := Gather(context.Background(), []Source{good, broken, other}, []string{"q1", "q2"}, 10, nil)
	require.Len(t, lists, 6)

	assert.Equal(t, []domain.Candidate{cand("g1")}, lists[0])
	assert.Empty(t, lists[1])
	assert.Equal(t, []domain.Candidate{cand("shared"), cand("o1")}, lists[2])
	assert.Equal(t, []domain.Candidate{cand("g2"), cand("shared")}, lists[3])
	assert.Empty(t, lists[4])
	assert.Empty(t, lists[5])

	assert.Equal(t, 2, good.callCount())
	assert.Equal(t, 2, broken.callCount())
	assert.Equal(t, 2, other.callCount())
}

func TestGatherAllSourcesFailing(t *testing.T) {
	broken := &fakeSource{name: "broken", err: domain.ErrSourceUnavailable}
	lists := Gather(context.Background(), []Source{broken}, []string{"q"}, 10, nil)
	assert.Empty(t, Merge(lists...))
}
