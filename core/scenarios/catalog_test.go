package scenarios

import (
	"errors"
	"strings"
	"testing"

	"github.com/satyavak/courtroom-core/core/courtroom"
)

func TestDefaultCatalogContainsBailApplication(t *testing.T) {
	catalog := Default()

	scenario, ok := catalog.Scenario("bail_application")
	if !ok {
		t.Fatalf("expected bail_application in default catalog")
	}
	if scenario.Title != "Bail Application Hearing" {
		t.Fatalf("unexpected title %q", scenario.Title)
	}
	if scenario.OpeningStatement.Speaker != courtroom.SpeakerDefense {
		t.Fatalf("expected defense to open, got %q", scenario.OpeningStatement.Speaker)
	}
	if len(catalog.Scenarios()) != 2 {
		t.Fatalf("expected 2 scenarios, got %d", len(catalog.Scenarios()))
	}
}

func TestDefaultCatalogThemes(t *testing.T) {
	catalog := Default()

	if got := catalog.DefaultTheme(); got != "classic_mahogany" {
		t.Fatalf("expected classic_mahogany as default theme, got %q", got)
	}
	for _, key := range []string{"classic_mahogany", "modern_metropolis", "district_court"} {
		if _, ok := catalog.Theme(key); !ok {
			t.Fatalf("expected theme %q", key)
		}
	}
	if _, ok := catalog.Theme("neon"); ok {
		t.Fatalf("expected unknown theme lookup to fail")
	}
}

func TestLoadRejectsInvalidCatalogs(t *testing.T) {
	testCases := []struct {
		name    string
		payload string
	}{
		{name: "malformed json", payload: `{"scenarios": [`},
		{name: "no scenarios", payload: `{"scenarios": [], "themes": [{"key": "a"}]}`},
		{name: "no themes", payload: `{"scenarios": [{"key": "a", "title": "A", "openingStatement": {"speaker": "defense", "dialogue": "x"}}]}`},
		{name: "judge opens", payload: `{"scenarios": [{"key": "a", "title": "A", "openingStatement": {"speaker": "judge", "dialogue": "x"}}], "themes": [{"key": "t"}]}`},
		{name: "empty opening", payload: `{"scenarios": [{"key": "a", "title": "A", "openingStatement": {"speaker": "defense", "dialogue": " "}}], "themes": [{"key": "t"}]}`},
		{name: "duplicate keys", payload: `{"scenarios": [
			{"key": "a", "title": "A", "openingStatement": {"speaker": "defense", "dialogue": "x"}},
			{"key": "a", "title": "B", "openingStatement": {"speaker": "defense", "dialogue": "y"}}
		], "themes": [{"key": "t"}]}`},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(testCase.payload))
			if !errors.Is(err, ErrInvalidCatalog) {
				t.Fatalf("expected ErrInvalidCatalog, got %v", err)
			}
		})
	}
}

func TestCatalogReturnsCopies(t *testing.T) {
	catalog := Default()

	listed := catalog.Scenarios()
	listed[0].Title = "changed"

	scenario, _ := catalog.Scenario(listed[0].Key)
	if scenario.Title == "changed" {
		t.Fatalf("expected catalog to be immutable through returned slices")
	}
}
