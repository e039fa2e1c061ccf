// Package llms defines the contract between the deliberation engine and the
// model providers that script the opposing counsel and the judge.
package llms

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/satyavak/courtroom-core/core/courtroom"
)

var ErrMalformedResponse = errors.New("malformed court response")

// CourtRequest is everything a gateway needs to produce the next turn.
type CourtRequest struct {
	History       []courtroom.Turn
	UserRole      courtroom.Speaker
	ScenarioTitle string
}

// OpponentRole is the advocate role played by the model.
func (r CourtRequest) OpponentRole() courtroom.Speaker {
	return courtroom.Opponent(r.UserRole)
}

// CourtResponse is the structured reply expected from a model.
type CourtResponse struct {
	Speaker   courtroom.Speaker `json:"speaker" jsonschema:"title=Speaker,description=The role delivering this turn,enum=defense,enum=prosecution,enum=judge"`
	Dialogue  string            `json:"dialogue" jsonschema:"title=Dialogue,description=The spoken line. Concise and direct"`
	Verdict   bool              `json:"verdict" jsonschema:"title=Verdict,description=True only for the final verdict from the judge"`
	Reasoning string            `json:"reasoning" jsonschema:"title=Reasoning,description=Two or three sentences explaining the verdict. Empty when verdict is false"`
}

// Validate rejects responses with an unknown speaker or no dialogue.
func (r CourtResponse) Validate() error {
	if !r.Speaker.IsValid() {
		return fmt.Errorf("%w: unknown speaker %q", ErrMalformedResponse, r.Speaker)
	}
	if strings.TrimSpace(r.Dialogue) == "" {
		return fmt.Errorf("%w: empty dialogue", ErrMalformedResponse)
	}
	return nil
}

// Turn converts the response into a history entry. Reasoning is dropped
// unless the response is a verdict.
func (r CourtResponse) Turn() courtroom.Turn {
	return courtroom.Turn{
		Speaker:   r.Speaker,
		Dialogue:  strings.TrimSpace(r.Dialogue),
		Verdict:   r.Verdict,
		Reasoning: strings.TrimSpace(r.Reasoning),
	}.Normalized()
}

// Payload is the JSON request understood by remote court gateways.
type Payload struct {
	History       []PayloadTurn     `json:"history"`
	UserRole      courtroom.Speaker `json:"userRole"`
	ScenarioTitle string            `json:"scenarioTitle"`
}

type PayloadTurn struct {
	Speaker  courtroom.Speaker `json:"speaker"`
	Dialogue string            `json:"dialogue"`
}

// NewPayload builds the wire payload for req.
func NewPayload(req CourtRequest) (Payload, error) {
	payload := Payload{
		History:       []PayloadTurn{},
		UserRole:      req.UserRole,
		ScenarioTitle: req.ScenarioTitle,
	}
	if err := copier.Copy(&payload.History, req.History); err != nil {
		return Payload{}, fmt.Errorf("failed to copy history: %w", err)
	}
	return payload, nil
}

// StripCodeFence removes a markdown code fence some models wrap JSON in.
func StripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if newline := strings.IndexByte(content, '\n'); newline >= 0 {
		content = content[newline+1:]
	} else {
		content = strings.TrimPrefix(content, "json")
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
