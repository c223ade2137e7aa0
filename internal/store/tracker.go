package store

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mastermind/internal/engine"
)

// Tracker keeps a game's snapshot current as the engine reports rounds.
type Tracker struct {
	ctx  context.Context
	st   Store
	snap Snapshot
}

// NewTracker saves the opening snapshot for game id.
func NewTracker(ctx context.Context, st Store, id string, maxRounds int) *Tracker {
	t := &Tracker{ctx: context.WithoutCancel(ctx), st: st, snap: Snapshot{
		ID:        id,
		MaxRounds: maxRounds,
		StartedAt: time.Now().UTC(),
	}}
	t.save()
	return t
}

// RoundPlayed implements engine.Observer.
func (t *Tracker) RoundPlayed(r engine.Round) {
	t.snap.Round = r.Number
	t.snap.LastGuess = r.Guess.String()
	t.snap.Red = r.Judgment.Exact
	t.snap.White = r.Judgment.Partial
	t.snap.ParityError = r.Judgment.ParityError
	t.snap.GameLost = r.Judgment.GameLost
	t.save()
}

// GameFinished implements engine.Observer.
func (t *Tracker) GameFinished(res engine.Result) {
	t.snap.Finished = true
	t.snap.Outcome = res.Outcome.String()
	t.snap.FinishedAt = time.Now().UTC()
	t.save()
}

func (t *Tracker) save() {
	// Status reporting is best effort; the game goes on without it.
	if err := t.st.Save(t.ctx, &t.snap); err != nil {
		log.Warn().Err(err).Str("gameId", t.snap.ID).Msg("save snapshot")
	}
}
