package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/fatih/color"

	"github.com/chazo1994/Creatory/internal/cli/types"
	"github.com/chazo1994/Creatory/internal/workflow"
)

var (
	// Tree node styles
	nodeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))             // Blue
	gateStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true) // Pink
	keyStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))            // Gray
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)  // Cyan

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			MarginTop(1)
)

// gateMarker prefixes human gate nodes whatever their run state
const gateMarker = "⏸ "

// RenderGraph renders a workflow graph as a tree in dependency order. Each
// node lists its type, run state and outgoing edges.
func RenderGraph(g workflow.Graph) string {
	if len(g.Nodes) == 0 {
		return keyStyle.Render("Template has no nodes")
	}

	rootLabel := fmt.Sprintf("%s %s", highlightStyle.Render(g.Name), keyStyle.Render(fmt.Sprintf("v%d", g.Version)))
	if g.RunID != "" {
		rootLabel += keyStyle.Render(fmt.Sprintf(" (run %s: ", g.RunID)) + coloredStatus(g.RunStatus) + keyStyle.Render(")")
	}
	root := tree.Root(rootLabel)

	outgoing := make(map[string][]workflow.Edge)
	for _, e := range g.Edges {
		outgoing[e.Source] = append(outgoing[e.Source], e)
	}

	for _, key := range g.Order() {
		n, ok := g.Node(key)
		if !ok {
			continue
		}
		root.Child(buildNode(n, outgoing[key], g.RunID != ""))
	}

	return root.String()
}

func buildNode(n workflow.Node, edges []workflow.Edge, hasRun bool) *tree.Tree {
	label := nodeStyle.Render(n.Key)
	if n.Gate {
		label = gateStyle.Render(gateMarker + n.Key)
	}
	t := tree.New().Root(label)

	t.Child(formatKeyValue("Type:", string(n.Type)))
	if hasRun {
		status := n.Status
		if n.State == workflow.StateIdle {
			status = "not reached"
		}
		t.Child(formatKeyValue("State:", coloredState(n.State, status)))
	}
	if msg, ok := n.Output["message"].(string); ok && msg != "" {
		t.Child(formatKeyValue("Output:", msg))
	}
	if len(edges) > 0 {
		targets := make([]string, 0, len(edges))
		for _, e := range edges {
			target := e.Target
			if e.Condition != "" {
				target += keyStyle.Render(fmt.Sprintf(" [%s]", e.Condition))
			}
			targets = append(targets, target)
		}
		t.Child(formatKeyValue("Next:", strings.Join(targets, ", ")))
	}
	return t
}

// formatKeyValue formats a key-value pair
func formatKeyValue(key, value string) string {
	return fmt.Sprintf("%s %s",
		keyStyle.Render(key),
		value,
	)
}

// coloredState colours text by node state; unknown states stay neutral
func coloredState(state workflow.NodeState, text string) string {
	if text == "" {
		text = string(state)
	}
	switch state {
	case workflow.StateSucceeded:
		return color.GreenString(text)
	case workflow.StateQueued, workflow.StateRunning:
		return color.YellowString(text)
	case workflow.StateWaiting:
		return color.MagentaString(text)
	case workflow.StateFailed, workflow.StateCancelled:
		return color.RedString(text)
	default:
		return text
	}
}

func coloredStatus(status string) string {
	return coloredState(workflow.StateOf(status), status)
}

// RenderTemplates renders the template list, marking the selected one
func RenderTemplates(templates []types.WorkflowTemplate, selected string) string {
	if len(templates) == 0 {
		return keyStyle.Render("No workflow templates found")
	}

	var b strings.Builder
	for _, t := range templates {
		marker := "  "
		name := t.Name
		if t.ID == selected {
			marker = "▸ "
			name = highlightStyle.Render(name)
		}
		fmt.Fprintf(&b, "%s%s %s  %s\n", marker, name, keyStyle.Render(fmt.Sprintf("v%d", t.Version)), keyStyle.Render(t.ID))
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderRunSummary renders the steps of a template run
func RenderRunSummary(run *types.WorkflowRun) string {
	if run == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Run %s: %s\n", run.ID, coloredStatus(run.Status))
	for _, step := range run.Steps {
		fmt.Fprintf(&b, "  • %-16s %s\n", step.NodeKey, coloredStatus(step.Status))
	}

	counts := make(map[string]int)
	for _, step := range run.Steps {
		counts[step.Status]++
	}
	statuses := make([]string, 0, len(counts))
	for s := range counts {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	parts := make([]string, 0, len(statuses))
	for _, s := range statuses {
		parts = append(parts, fmt.Sprintf("%s %s", highlightStyle.Render(fmt.Sprintf("%d", counts[s])), keyStyle.Render(s)))
	}
	if len(parts) > 0 {
		b.WriteString(summaryStyle.Render("Total: " + strings.Join(parts, ", ")))
	}
	return strings.TrimRight(b.String(), "\n")
}
