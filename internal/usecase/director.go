package usecase

import (
	"fmt"
	"strings"

	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/domain/entity"
)

const (
	taskPlanning     = "planning"
	taskDraftContent = "draft_content"
)

var complexMarkers = []string{
	"strategy",
	"campaign",
	"go-to-market",
	"research",
	"multi-step",
	"long-form",
}

// providerRoute decides which model provider drafts and which refines
type providerRoute struct {
	Draft  string
	Refine string
	Reason string
}

func (r providerRoute) toJSON() map[string]any {
	return map[string]any{
		"draft_provider":  r.Draft,
		"refine_provider": r.Refine,
		"reason":          r.Reason,
	}
}

func routeForTask(prompt string) providerRoute {
	normalized := strings.ToLower(strings.TrimSpace(prompt))
	for _, marker := range complexMarkers {
		if strings.Contains(normalized, marker) {
			return providerRoute{
				Draft:  "ollama",
				Refine: "openai",
				Reason: "Complex request detected: use low-cost draft + higher-reasoning refinement.",
			}
		}
	}
	return providerRoute{
		Draft:  "ollama",
		Refine: "openai",
		Reason: "Default hybrid route for responsive drafting and reliable final polish.",
	}
}

func buildPlan(prompt string, kind entity.ThreadKind) []string {
	if kind == entity.ThreadQuick {
		intent := []rune(strings.TrimSpace(prompt))
		if len(intent) > 80 {
			intent = intent[:80]
		}
		return []string{
			"Directly answer quick request: " + string(intent),
			"Return concise recommendation with optional next action",
		}
	}
	return []string{
		"Decode creator intention and target audience",
		"Draft content structure: hook, value, CTA",
		"Select suitable tools for script/media generation",
		"Create production checklist for human review",
	}
}

func assistantText(prompt string, kind entity.ThreadKind, plan []string, route providerRoute) string {
	prompt = strings.TrimSpace(prompt)
	if kind == entity.ThreadQuick {
		return "Quick answer prepared.\n\n" +
			"Question: " + prompt + "\n" +
			"Recommendation: Use this as a scoped experiment, then inject into main thread if approved."
	}

	var b strings.Builder
	b.WriteString("Director coordination initialized.\n\n")
	fmt.Fprintf(&b, "Input idea: %s\n\nExecution plan:\n", prompt)
	for i, step := range plan {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	b.WriteString("\nProvider routing:\n")
	fmt.Fprintf(&b, "- Draft model route: %s\n", route.Draft)
	fmt.Fprintf(&b, "- Refinement model route: %s\n", route.Refine)
	fmt.Fprintf(&b, "- Why: %s\n\n", route.Reason)
	b.WriteString("Next: choose tools for script, visuals, and voice-over, then run a draft pipeline.")
	return b.String()
}

// checkStepBudget trips the circuit breaker when a plan asks for more steps
// than allowed
func checkStepBudget(requested, maxSteps int) error {
	if requested <= maxSteps {
		return nil
	}
	return domain.NewInvalidInputError(fmt.Sprintf(
		"Circuit breaker triggered: requested_steps=%d exceeds max_steps=%d", requested, maxSteps))
}
