package orchestration

import (
	"context"
	"fmt"
	"time"

	"github.com/satyavak/courtroom-core/core/courtroom"
	"github.com/satyavak/courtroom-core/core/events"
	"github.com/satyavak/courtroom-core/core/llms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// FallbackDialogue is spoken by the judge whenever the court could not
// produce a usable turn.
const FallbackDialogue = "There seems to be a procedural error. Court is in recess for 5 minutes."

// FallbackTurn is appended in place of a failed court response.
func FallbackTurn() courtroom.Turn {
	return courtroom.Turn{Speaker: courtroom.SpeakerJudge, Dialogue: FallbackDialogue}
}

// NextActor decides who has to produce the next turn. It depends only on its
// arguments.
func NextActor(history []courtroom.Turn, userRole, openingSpeaker courtroom.Speaker) courtroom.Actor {
	if len(history) == 0 {
		if openingSpeaker == userRole {
			return courtroom.ActorUser
		}
		return courtroom.ActorCourt
	}

	last := history[len(history)-1]
	switch {
	case last.Verdict:
		return courtroom.ActorNone
	case last.Speaker == userRole:
		return courtroom.ActorCourt
	default:
		return courtroom.ActorUser
	}
}

// normalizeCourtTurn makes sure a court turn is never attributed to the
// user. Verdicts always belong to the judge.
func normalizeCourtTurn(turn courtroom.Turn, userRole courtroom.Speaker) courtroom.Turn {
	switch {
	case turn.Verdict:
		turn.Speaker = courtroom.SpeakerJudge
	case turn.Speaker == userRole:
		turn.Speaker = courtroom.Opponent(userRole)
	}
	return turn.Normalized()
}

func (o *Orchestrator) nextActorLocked() courtroom.Actor {
	return NextActor(o.history.turns, o.userRole, o.scenario.OpeningStatement.Speaker)
}

// evaluateLocked requests a court turn when one is due. At most one request
// is outstanding per session. The caller must hold o.mu.
func (o *Orchestrator) evaluateLocked() {
	if o.closed || o.state != courtroom.StateRunning || o.awaiting {
		return
	}
	if o.nextActorLocked() != courtroom.ActorCourt {
		return
	}

	o.awaiting = true
	o.queueEvent(events.NewCourtAwaitingChanged(o.sessionID, true))

	req := llms.CourtRequest{
		History:       o.history.Turns(),
		UserRole:      o.userRole,
		ScenarioTitle: o.scenario.Title,
	}
	o.inFlight.Add(1)
	go o.respond(o.epoch, o.sessionID, req)
}

func (o *Orchestrator) respond(epoch uint64, sessionID string, req llms.CourtRequest) {
	defer o.inFlight.Done()

	ctx, span := tracer.Start(o.responseContext, "court respond", trace.WithAttributes(
		attribute.String("courtroom.session_id", sessionID),
		attribute.String("courtroom.user_role", req.UserRole.String()),
		attribute.Int("courtroom.history_length", len(req.History)),
	))
	defer span.End()

	if o.responseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.responseTimeout)
		defer cancel()
	}

	start := time.Now()
	response, err := o.callGateway(ctx, req)
	gatewayDuration.Record(ctx, time.Since(start).Seconds())

	turn, source := courtroom.Turn{}, events.TurnSourceCourt
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "court response failed")
		logger.WarnContext(ctx, "court response failed, recessing", "error", err, "session_id", sessionID)
		gatewayFallbacks.Add(ctx, 1)
		turn, source = FallbackTurn(), events.TurnSourceFallback
	} else {
		turn = normalizeCourtTurn(response.Turn(), req.UserRole)
		span.SetAttributes(
			attribute.String("courtroom.speaker", turn.Speaker.String()),
			attribute.Bool("courtroom.verdict", turn.Verdict),
		)
	}

	o.mu.Lock()
	if epoch != o.epoch {
		o.mu.Unlock()
		logger.InfoContext(ctx, "discarding court response from ended session", "session_id", sessionID)
		return
	}

	o.awaiting = false
	if err := o.appendTurnLocked(turn, source); err != nil {
		span.RecordError(err)
		logger.ErrorContext(ctx, "failed to append court turn", "error", err, "session_id", sessionID)
	}
	o.queueEvent(events.NewCourtAwaitingChanged(o.sessionID, false))
	o.evaluateLocked()
	o.mu.Unlock()

	o.flushEvents()
}

type gatewayResult struct {
	response *llms.CourtResponse
	err      error
}

// callGateway makes a single attempt. It returns early when ctx is done even
// if the gateway ignores ctx.
func (o *Orchestrator) callGateway(ctx context.Context, req llms.CourtRequest) (*llms.CourtResponse, error) {
	if o.gateway == nil {
		return nil, errNoGateway
	}

	result := make(chan gatewayResult, 1)
	go func() {
		response, err := o.invokeGateway(ctx, req)
		result <- gatewayResult{response: response, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("awaiting court response: %w", ctx.Err())
	case r := <-result:
		if r.err != nil {
			return nil, r.err
		}
		if r.response == nil {
			return nil, errEmptyResponse
		}
		if err := r.response.Validate(); err != nil {
			return nil, err
		}
		return r.response, nil
	}
}

func (o *Orchestrator) invokeGateway(ctx context.Context, req llms.CourtRequest) (response *llms.CourtResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			response, err = nil, fmt.Errorf("%w: %v", errGatewayPanic, r)
		}
	}()

	response, err = o.gateway.RespondInCourt(ctx, req, o.promptOptions...)
	if err != nil {
		return nil, fmt.Errorf("respond in court: %w", err)
	}
	return response, nil
}

// appendTurnLocked appends turn and queues the resulting events. A verdict
// moves the session into the verdict state. The caller must hold o.mu.
func (o *Orchestrator) appendTurnLocked(turn courtroom.Turn, source events.TurnSource) error {
	previous, _ := o.history.Last()
	index, err := o.history.Append(turn)
	if err != nil {
		return err
	}
	turn = turn.Normalized()

	turnsAppended.Add(o.baseContext, 1, metric.WithAttributes(
		attribute.String("courtroom.speaker", turn.Speaker.String()),
		attribute.String("courtroom.source", string(source)),
	))
	o.queueEvent(events.NewTurnAppended(o.sessionID, turn, index, source, previous.Speaker))

	if turn.Verdict {
		o.verdictReasoning = turn.Reasoning
		o.queueEvent(events.NewVerdictReached(o.sessionID, turn))
		o.setStateLocked(courtroom.StateVerdict)
	}
	return nil
}
