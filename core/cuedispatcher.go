package orchestration

import (
	"context"

	"github.com/satyavak/courtroom-core/core/courtroom"
	"github.com/satyavak/courtroom-core/core/cues"
	"github.com/satyavak/courtroom-core/core/events"
)

// cueDispatcher plays cues in reaction to engine events. It only reads
// events and never feeds back into the deliberation. Events are delivered
// one at a time so its own state needs no locking.
type cueDispatcher struct {
	bank           CueBank
	random         RandomSource
	reactionChance float64

	// judgeHeard is set once the judge took the floor in this session.
	judgeHeard bool
}

func newCueDispatcher(bank CueBank, random RandomSource, reactionChance float64) cueDispatcher {
	return cueDispatcher{bank: bank, random: random, reactionChance: reactionChance}
}

func (d *cueDispatcher) handle(ctx context.Context, event events.Event) {
	if d.bank == nil {
		return
	}

	switch e := event.(type) {
	case events.SessionStateChanged:
		switch e.To {
		case courtroom.StateRunning:
			d.judgeHeard = false
			if err := d.bank.Initialize(ctx); err != nil {
				logger.WarnContext(ctx, "failed to initialize cues", "error", err)
			}
		case courtroom.StateSelection:
			d.judgeHeard = false
			d.bank.Dispose()
		}

	case events.TurnAppended:
		if e.Turn.Speaker == e.PreviousSpeaker {
			return
		}
		switch {
		case e.Turn.Speaker == courtroom.SpeakerJudge:
			// The verdict gavel is played on VerdictReached.
			if !d.judgeHeard && !e.Turn.Verdict {
				d.trigger(ctx, cues.CueGavel)
			}
			d.judgeHeard = true
		case e.Turn.Speaker.IsAdvocate():
			if len(cues.Reactions) > 0 && d.random.Float64() < d.reactionChance {
				d.trigger(ctx, cues.Reactions[d.random.IntN(len(cues.Reactions))])
			}
		}

	case events.VerdictReached:
		d.trigger(ctx, cues.CueGavel)
	}
}

func (d *cueDispatcher) trigger(ctx context.Context, cue cues.Cue) {
	if err := d.bank.Trigger(cue); err != nil {
		logger.WarnContext(ctx, "failed to trigger cue", "cue", cue, "error", err)
	}
}
