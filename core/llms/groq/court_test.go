package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/satyavak/courtroom-core/core/courtroom"
	"github.com/satyavak/courtroom-core/core/llms"
)

func TestRespondInCourtSendsStructuredRequest(t *testing.T) {
	var received schemaRequestBody
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("expected bearer auth header, got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"` +
			"```json\\n{\\\"speaker\\\":\\\"judge\\\",\\\"dialogue\\\":\\\"Bail is granted.\\\",\\\"verdict\\\":true,\\\"reasoning\\\":\\\"Strong community ties.\\\"}\\n```" +
			`"}}],"usage":{"total_tokens":42}}`))
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithURL(server.URL), WithHTTPClient(server.Client()), WithModel("test-model"))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	response, err := client.RespondInCourt(context.Background(), llms.CourtRequest{
		History:       []courtroom.Turn{{Speaker: courtroom.SpeakerDefense, Dialogue: "Release my client."}},
		UserRole:      courtroom.SpeakerDefense,
		ScenarioTitle: "Bail Application Hearing",
	}, llms.WithSystemPrompt("Stay in character."))
	if err != nil {
		t.Fatalf("expected response, got error: %v", err)
	}

	if response.Speaker != courtroom.SpeakerJudge || !response.Verdict || response.Reasoning != "Strong community ties." {
		t.Fatalf("unexpected response: %+v", response)
	}
	if received.Model != "test-model" {
		t.Fatalf("expected model to be forwarded, got %q", received.Model)
	}
	if len(received.Messages) != 2 || received.Messages[0].Role != messageRoleSystem || received.Messages[1].Role != messageRoleUser {
		t.Fatalf("unexpected messages: %+v", received.Messages)
	}
	if received.ResponseFormat == nil || received.ResponseFormat.Type != "json_schema" || received.ResponseFormat.JSONSchema.Name != "CourtResponse" {
		t.Fatalf("unexpected response format: %+v", received.ResponseFormat)
	}
	if received.Temperature == nil || *received.Temperature != llms.DefaultTemperature {
		t.Fatalf("expected default temperature, got %v", received.Temperature)
	}
}

func TestRespondInCourtReturnsErrorOnNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, _ := NewClient("test-key", WithURL(server.URL), WithHTTPClient(server.Client()))
	if _, err := client.RespondInCourt(context.Background(), llms.CourtRequest{UserRole: courtroom.SpeakerDefense}); err == nil {
		t.Fatalf("expected error for non-OK status")
	}
}

func TestRespondInCourtReturnsErrorOnEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client, _ := NewClient("test-key", WithURL(server.URL), WithHTTPClient(server.Client()))
	if _, err := client.RespondInCourt(context.Background(), llms.CourtRequest{UserRole: courtroom.SpeakerDefense}); err == nil {
		t.Fatalf("expected error for empty choices")
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(""); err != ErrMissingAPIKey {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}
