package deepgram

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/satyavak/courtroom-core/core/texttospeech"
)

func newSpeakServer(t *testing.T, handle func(t *testing.T, r *http.Request, conn *websocket.Conn)) string {
	t.Helper()

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		handle(t, r, conn)
	}))
	t.Cleanup(server.Close)

	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestSpeakDeliversAudioUntilFlushed(t *testing.T) {
	speakURL := newSpeakServer(t, func(t *testing.T, r *http.Request, conn *websocket.Conn) {
		if got := r.Header.Get("Authorization"); got != "Token test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		query := r.URL.Query()
		if query.Get("model") != "aura-2-zeus-en" || query.Get("encoding") != "linear16" || query.Get("sample_rate") != "24000" {
			t.Errorf("unexpected query %v", query)
		}

		var speak websocketMessage
		if err := conn.ReadJSON(&speak); err != nil || speak.Type != "Speak" || speak.Text != "Order in the court." {
			t.Errorf("unexpected speak message %+v (%v)", speak, err)
			return
		}
		var flush websocketMessage
		if err := conn.ReadJSON(&flush); err != nil || flush.Type != "Flush" {
			t.Errorf("unexpected flush message %+v (%v)", flush, err)
			return
		}

		_ = conn.WriteMessage(websocket.BinaryMessage, []byte{1, 2})
		_ = conn.WriteMessage(websocket.BinaryMessage, []byte{3, 4})
		_ = conn.WriteJSON(websocketMessage{Type: "Flushed"})

		var closing websocketMessage
		_ = conn.ReadJSON(&closing)
	})

	client, err := NewTextToSpeechClient(WithAPIKey("test-key"), WithSpeakURL(speakURL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	var audio bytes.Buffer
	ended := 0
	err = client.Speak(context.Background(), "Order in the court.",
		texttospeech.WithVoice("aura-2-zeus-en"),
		texttospeech.WithSpeechAudioCallback(func(chunk []byte) { audio.Write(chunk) }),
		texttospeech.WithSpeechEndedCallback(func() { ended++ }),
	)
	if err != nil {
		t.Fatalf("speak: %v", err)
	}
	if !bytes.Equal(audio.Bytes(), []byte{1, 2, 3, 4}) {
		t.Fatalf("unexpected audio %v", audio.Bytes())
	}
	if ended != 1 {
		t.Fatalf("expected one ended callback, got %d", ended)
	}
}

func TestSpeakWithoutAPIKeyIsUnavailable(t *testing.T) {
	client, err := NewTextToSpeechClient(WithAPIKey(""))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if err := client.Speak(context.Background(), "Hello."); !errors.Is(err, texttospeech.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestSpeakRejectsUnknownVoice(t *testing.T) {
	if _, err := NewTextToSpeechClient(WithVoice("aura-robot")); err == nil {
		t.Fatalf("expected unknown default voice to be rejected")
	}

	client, err := NewTextToSpeechClient(WithAPIKey("test-key"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.Speak(context.Background(), "Hello.", texttospeech.WithVoice("aura-robot")); err == nil {
		t.Fatalf("expected unknown request voice to be rejected")
	}
}

func TestSpeakStopsWhenContextIsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	speakURL := newSpeakServer(t, func(t *testing.T, _ *http.Request, conn *websocket.Conn) {
		var msg websocketMessage
		_ = conn.ReadJSON(&msg)
		_ = conn.ReadJSON(&msg)
		_ = conn.WriteMessage(websocket.BinaryMessage, []byte{1})
		// never flushes
		_, _, _ = conn.ReadMessage()
	})

	client, err := NewTextToSpeechClient(WithAPIKey("test-key"), WithSpeakURL(speakURL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	err = client.Speak(ctx, "This will be interrupted.",
		texttospeech.WithSpeechAudioCallback(func([]byte) { cancel() }),
	)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
