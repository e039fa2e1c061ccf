package orchestration

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/satyavak/courtroom-core/core/courtroom"
	"github.com/satyavak/courtroom-core/core/events"
	"github.com/satyavak/courtroom-core/core/scenarios"
)

// Session is a point-in-time copy of the session state.
type Session struct {
	ID                 string
	State              courtroom.State
	Scenario           scenarios.Scenario
	UserRole           courtroom.Speaker
	Theme              string
	InputMode          courtroom.InputMode
	History            []courtroom.Turn
	IsAwaitingResponse bool
	VerdictReasoning   string
	NextActor          courtroom.Actor
}

// Scenarios lists the scenarios offered in the selection state.
func (o *Orchestrator) Scenarios() []scenarios.Scenario { return o.catalog.Scenarios() }

// Themes lists the presentation themes offered in the theme selection state.
func (o *Orchestrator) Themes() []scenarios.Theme { return o.catalog.Themes() }

// SelectScenario stores scenario and moves on to role selection.
func (o *Orchestrator) SelectScenario(scenario scenarios.Scenario) error {
	if err := scenario.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}

	return o.transition(courtroom.StateSelection, courtroom.StateRoleSelection, func() {
		o.scenario = scenario
	})
}

// SelectScenarioByKey selects a scenario from the catalog.
func (o *Orchestrator) SelectScenarioByKey(key string) error {
	scenario, ok := o.catalog.Scenario(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownScenario, key)
	}
	return o.SelectScenario(scenario)
}

// SelectRole fixes the advocate role the user argues for. The judge is not
// a playable role.
func (o *Orchestrator) SelectRole(role courtroom.Speaker) error {
	if !role.IsAdvocate() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	return o.transition(courtroom.StateRoleSelection, courtroom.StateThemeSelection, func() {
		o.userRole = role
	})
}

// SelectTheme stores the presentation theme. The engine does nothing with it
// besides handing it back through Snapshot.
func (o *Orchestrator) SelectTheme(key string) error {
	if _, ok := o.catalog.Theme(key); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, key)
	}

	return o.transition(courtroom.StateThemeSelection, courtroom.StateInputMethodSelection, func() {
		o.theme = key
	})
}

// SelectInputMode starts the hearing. When the user does not deliver the
// opening statement it is seeded as the first turn.
func (o *Orchestrator) SelectInputMode(mode courtroom.InputMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidInputMode, mode)
	}

	return o.transition(courtroom.StateInputMethodSelection, courtroom.StateRunning, func() {
		o.inputMode = mode
		if opening := o.scenario.OpeningStatement; opening.Speaker != o.userRole {
			if err := o.appendTurnLocked(opening.Turn(), events.TurnSourceOpening); err != nil {
				logger.ErrorContext(o.baseContext, "failed to seed opening statement", "error", err)
			}
		}
		o.evaluateLocked()
	})
}

// transition applies update and moves from one state to the next. Nothing
// changes when the session is not in from.
func (o *Orchestrator) transition(from, to courtroom.State, update func()) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}
	if o.state != from {
		state := o.state
		o.mu.Unlock()
		return fmt.Errorf("%w: cannot move to %s from %s", ErrInvalidTransition, to, state)
	}

	o.setStateLocked(to)
	update()
	o.mu.Unlock()

	o.flushEvents()
	return nil
}

func (o *Orchestrator) setStateLocked(to courtroom.State) {
	from := o.state
	o.state = to
	o.queueEvent(events.NewSessionStateChanged(o.sessionID, from, to))
}

// SubmitArgument appends text as the user's turn and hands the floor to the
// court.
func (o *Orchestrator) SubmitArgument(text string) error {
	o.mu.Lock()
	err := o.submitLocked(text)
	o.mu.Unlock()

	o.flushEvents()
	return err
}

func (o *Orchestrator) checkSubmitLocked(text string) error {
	switch {
	case o.closed:
		return ErrClosed
	case text == "":
		return ErrEmptyArgument
	case o.state == courtroom.StateVerdict:
		return ErrHistorySealed
	case o.state != courtroom.StateRunning:
		return fmt.Errorf("%w: cannot submit an argument in %s", ErrInvalidTransition, o.state)
	case o.awaiting || o.nextActorLocked() != courtroom.ActorUser:
		return ErrNotUserTurn
	}
	return nil
}

func (o *Orchestrator) submitLocked(text string) error {
	text = strings.TrimSpace(text)
	if err := o.checkSubmitLocked(text); err != nil {
		return err
	}

	turn := courtroom.Turn{Speaker: o.userRole, Dialogue: text}
	if err := o.appendTurnLocked(turn, events.TurnSourceUser); err != nil {
		return err
	}
	o.evaluateLocked()
	return nil
}

// EndSession returns to scenario selection from any state. Listening is
// cancelled and a court response still in flight is discarded when it
// arrives.
func (o *Orchestrator) EndSession() {
	o.mu.Lock()
	stopSpeech := o.cancelListeningLocked()

	from := o.state
	if o.awaiting {
		o.queueEvent(events.NewCourtAwaitingChanged(o.sessionID, false))
	}
	if from != courtroom.StateSelection {
		o.setStateLocked(courtroom.StateSelection)
	}

	o.epoch++
	o.scenario = scenarios.Scenario{}
	o.userRole = ""
	o.theme = o.catalog.DefaultTheme()
	o.inputMode = ""
	o.history.Reset()
	o.awaiting = false
	o.verdictReasoning = ""
	o.speech = speechSession{generation: o.speech.generation}
	o.state = courtroom.StateSelection
	o.sessionID = uuid.NewString()
	o.mu.Unlock()

	stopSpeech()
	o.flushEvents()
}

// State is the current session state.
func (o *Orchestrator) State() courtroom.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// SessionID changes every time a session ends.
func (o *Orchestrator) SessionID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sessionID
}

// ActiveSpeaker is the speaker of the latest turn, empty before the first.
func (o *Orchestrator) ActiveSpeaker() courtroom.Speaker {
	o.mu.Lock()
	defer o.mu.Unlock()
	last, _ := o.history.Last()
	return last.Speaker
}

// CurrentDialogue is the dialogue of the latest turn.
func (o *Orchestrator) CurrentDialogue() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	last, _ := o.history.Last()
	return last.Dialogue
}

func (o *Orchestrator) IsUserTurn() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.isUserTurnLocked()
}

func (o *Orchestrator) isUserTurnLocked() bool {
	return o.state == courtroom.StateRunning && !o.awaiting && o.nextActorLocked() == courtroom.ActorUser
}

// IsLoading reports whether a court response is outstanding.
func (o *Orchestrator) IsLoading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.awaiting
}

// VerdictReasoning is empty until a verdict is reached.
func (o *Orchestrator) VerdictReasoning() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.verdictReasoning
}

// History returns a copy of the turns so far.
func (o *Orchestrator) History() []courtroom.Turn {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.history.Turns()
}

// Snapshot copies the whole session under one lock.
func (o *Orchestrator) Snapshot() Session {
	o.mu.Lock()
	defer o.mu.Unlock()

	nextActor := courtroom.ActorNone
	if o.state == courtroom.StateRunning {
		nextActor = o.nextActorLocked()
	}
	return Session{
		ID:                 o.sessionID,
		State:              o.state,
		Scenario:           o.scenario,
		UserRole:           o.userRole,
		Theme:              o.theme,
		InputMode:          o.inputMode,
		History:            o.history.Turns(),
		IsAwaitingResponse: o.awaiting,
		VerdictReasoning:   o.verdictReasoning,
		NextActor:          nextActor,
	}
}
