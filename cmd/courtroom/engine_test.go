package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/satyavak/courtroom-core/core/llms/groq"
	"github.com/satyavak/courtroom-core/core/llms/openai"
	"github.com/satyavak/courtroom-core/core/llms/remote"
)

func TestNewGatewaySelectsProvider(t *testing.T) {
	testCases := []struct {
		name   string
		cfg    Config
		assert func(t *testing.T, gateway any)
	}{
		{
			name: "groq",
			cfg:  Config{LLMProvider: providerGroq, GroqAPIKey: "key", GroqModel: "llama"},
			assert: func(t *testing.T, gateway any) {
				if _, ok := gateway.(*groq.Client); !ok {
					t.Fatalf("expected groq client, got %T", gateway)
				}
			},
		},
		{
			name: "openai",
			cfg:  Config{LLMProvider: providerOpenAI, OpenAIAPIKey: "key"},
			assert: func(t *testing.T, gateway any) {
				if _, ok := gateway.(*openai.Client); !ok {
					t.Fatalf("expected openai client, got %T", gateway)
				}
			},
		},
		{
			name: "remote",
			cfg:  Config{LLMProvider: providerRemote, GatewayURL: "http://localhost/court", GatewayToken: "secret"},
			assert: func(t *testing.T, gateway any) {
				if _, ok := gateway.(*remote.Client); !ok {
					t.Fatalf("expected remote client, got %T", gateway)
				}
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			gateway, err := newGateway(testCase.cfg)
			if err != nil {
				t.Fatalf("new gateway: %v", err)
			}
			testCase.assert(t, gateway)
		})
	}
}

func TestNewGatewayReportsMissingCredentials(t *testing.T) {
	if _, err := newGateway(Config{LLMProvider: providerGroq}); !errors.Is(err, groq.ErrMissingAPIKey) {
		t.Fatalf("expected missing groq key, got %v", err)
	}
	if _, err := newGateway(Config{LLMProvider: providerRemote}); !errors.Is(err, remote.ErrMissingEndpoint) {
		t.Fatalf("expected missing endpoint, got %v", err)
	}
	if _, err := newGateway(Config{LLMProvider: "carrier-pigeon"}); err == nil {
		t.Fatalf("expected unknown provider to fail")
	}
}

func TestLoadCatalog(t *testing.T) {
	catalog, err := loadCatalog("")
	if err != nil || len(catalog.Scenarios()) == 0 {
		t.Fatalf("expected bundled catalog, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "catalog.json")
	payload := `{"scenarios": [{"key": "parking", "title": "Parking Appeal", "openingStatement": {"speaker": "prosecution", "dialogue": "The car was on a red line."}}], "themes": [{"key": "night_court", "name": "Night Court"}]}`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	catalog, err = loadCatalog(path)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if _, ok := catalog.Scenario("parking"); !ok || catalog.DefaultTheme() != "night_court" {
		t.Fatalf("expected custom catalog to be loaded")
	}

	if _, err := loadCatalog(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected missing catalog file to fail")
	}
}

func TestAudioBackendNoneHasNoDevice(t *testing.T) {
	device, err := newAudioDevice(Config{AudioBackend: audioBackendNone})
	if err != nil {
		t.Fatalf("new audio device: %v", err)
	}
	if device.capture != nil || device.output != nil {
		t.Fatalf("expected no device for the none backend")
	}
	if err := device.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestApplyFlagsOverridesEnvironment(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--provider", "openai", "--muted"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	flags := rootFlags{provider: "openai", muted: true}

	cfg, err := applyFlags(cmd, flags, Config{LLMProvider: providerGroq, AudioBackend: audioBackendNone, Narrate: true})
	if err != nil {
		t.Fatalf("apply flags: %v", err)
	}
	if cfg.LLMProvider != providerOpenAI || !cfg.Muted || !cfg.Narrate {
		t.Fatalf("unexpected config %+v", cfg)
	}
}
