package chat

import (
	"strings"
	"testing"
)

func TestMythologyPrompt(t *testing.T) {
	p := MythologyPrompt("Nordycka")
	if !strings.Contains(p, "Nordycka") {
		t.Fatalf("prompt missing mythology name:\n%s", p)
	}
	if !strings.Contains(p, "nie wcielasz się w boga") {
		t.Fatalf("narrator prompt must forbid roleplay:\n%s", p)
	}
}

func TestGodPrompt(t *testing.T) {
	title := "Bóg piorunów"
	domain := "burze, siła"
	personality := "dumny, porywczy"

	p := GodPrompt("Thor", &title, &domain, &personality, "Nordycka")
	for _, want := range []string{"Thor", "Bóg piorunów", "burze, siła", "dumny, porywczy", "Nordycka", "Nigdy nie wychodź z roli"} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p)
		}
	}
}

func TestGodPromptOmitsEmptyOptionalLines(t *testing.T) {
	p := GodPrompt("Thor", nil, nil, nil, "Nordycka")
	if strings.Contains(p, "Twoje domeny") || strings.Contains(p, "Osobowość") {
		t.Fatalf("optional lines must be omitted:\n%s", p)
	}
}
