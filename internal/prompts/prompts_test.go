package prompts

import (
	"strings"
	"testing"
)

func TestPersonaSystem(t *testing.T) {
	got := PersonaSystem("Ada", "CTO", "A veteran leader.", "Direct", "architecture")

	if !strings.HasPrefix(got, "You are Ada, CTO. A veteran leader.") {
		t.Errorf("identity line: %q", got)
	}
	if !strings.Contains(got, "Your personality: Direct") {
		t.Errorf("personality line missing: %q", got)
	}
	if !strings.Contains(got, "Your expertise: architecture") {
		t.Errorf("expertise line missing: %q", got)
	}
	if !strings.Contains(got, "staying in character") {
		t.Errorf("closing directive missing: %q", got)
	}
}

func TestPersonaSystemEmptyDescription(t *testing.T) {
	got := PersonaSystem("Ada", "CTO", "", "Direct", "architecture")
	if !strings.HasPrefix(got, "You are Ada, CTO.\n") {
		t.Errorf("identity line should end at the role: %q", got)
	}
}

func TestSummaryPrompts(t *testing.T) {
	transcript := "User: hello\n\nAda: hi"

	exec := ExecutiveSummary(transcript)
	if !strings.Contains(exec, "executive summary") || !strings.Contains(exec, transcript) {
		t.Errorf("executive prompt: %q", exec)
	}
	if !strings.Contains(exec, "max 300 words") {
		t.Errorf("executive prompt missing length bound: %q", exec)
	}

	detailed := DetailedSummary(transcript)
	if !strings.Contains(detailed, "detailed summary") || !strings.Contains(detailed, transcript) {
		t.Errorf("detailed prompt: %q", detailed)
	}

	if exec == detailed {
		t.Error("formats should produce distinct prompts")
	}
}
