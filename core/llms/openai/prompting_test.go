package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/satyavak/courtroom-core/core/courtroom"
	"github.com/satyavak/courtroom-core/core/llms"
)

func TestRespondInCourtDecodesOutputText(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"output":[
			{"type":"reasoning","id":"rs_1","summary":[]},
			{"type":"message","id":"msg_1","content":[{"type":"output_text","text":"{\"speaker\":\"prosecution\",\"dialogue\":\"The accused is a flight risk.\",\"verdict\":false,\"reasoning\":\"\"}"}]}
		]}`))
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithURL(server.URL), WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	response, err := client.RespondInCourt(context.Background(), llms.CourtRequest{
		History:  []courtroom.Turn{{Speaker: courtroom.SpeakerDefense, Dialogue: "Release my client."}},
		UserRole: courtroom.SpeakerDefense,
	})
	if err != nil {
		t.Fatalf("expected response, got error: %v", err)
	}

	if response.Speaker != courtroom.SpeakerProsecution || response.Dialogue != "The accused is a flight risk." {
		t.Fatalf("unexpected response: %+v", response)
	}
	text, ok := received["text"].(map[string]any)
	if !ok {
		t.Fatalf("expected text format in request, got %v", received["text"])
	}
	format, _ := text["format"].(map[string]any)
	if format["type"] != "json_schema" || format["strict"] != true {
		t.Fatalf("unexpected text format: %v", format)
	}
}

func TestRespondInCourtSurfacesRefusal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":[{"type":"message","id":"msg_1","content":[{"type":"refusal","refusal":"no"}]}]}`))
	}))
	defer server.Close()

	client, _ := NewClient("test-key", WithURL(server.URL), WithHTTPClient(server.Client()))
	_, err := client.RespondInCourt(context.Background(), llms.CourtRequest{UserRole: courtroom.SpeakerDefense})
	if !errors.Is(err, ErrRefused) {
		t.Fatalf("expected ErrRefused, got %v", err)
	}
}

func TestToOpenAIMessages(t *testing.T) {
	messages := toOpenAIMessages("", "prompt")
	if len(messages) != 1 || messages[0].Role != messageRoleUser || messages[0].Content != "prompt" {
		t.Fatalf("unexpected messages without instructions: %+v", messages)
	}

	messages = toOpenAIMessages("instructions", "prompt")
	if len(messages) != 2 || messages[0].Role != messageRoleDeveloper || messages[0].Type != messageTypeMessage {
		t.Fatalf("unexpected messages with instructions: %+v", messages)
	}
}
