package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/robalobadob/mastermind/internal/engine"
	"github.com/robalobadob/mastermind/internal/game"
)

func TestObserverCounts(t *testing.T) {
	m := New("judge")

	m.RoundPlayed(engine.Round{Number: 1, Judgment: game.Judgment{Exact: 2, Partial: 1}})
	m.RoundPlayed(engine.Round{Number: 2, Judgment: game.Judgment{Exact: 3, ParityError: true}})
	m.GameFinished(engine.Result{Outcome: game.ParityError, Rounds: 2})
	m.BytesRead(4)
	m.BytesWritten(2)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.rounds))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.parityFaults))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.lastExact))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.games.WithLabelValues("parity_error")))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.bytes.WithLabelValues("in")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.bytes.WithLabelValues("out")))
}

func TestHandlerExposition(t *testing.T) {
	m := New("guesser")
	m.GameFinished(engine.Result{Outcome: game.Won})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Contains(t, rec.Body.String(), `mastermind_games_total{outcome="won",role="guesser"} 1`)
}
