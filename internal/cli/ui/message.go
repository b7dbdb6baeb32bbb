package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/lipgloss"

	"github.com/chazo1994/Creatory/internal/cli/types"
	"github.com/chazo1994/Creatory/internal/conversation"
	"github.com/chazo1994/Creatory/internal/stream"
)

var (
	userStyle      = lipgloss.NewStyle().Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	toolStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	systemStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	eventStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
)

// RoleLabel is the styled author label of a message
func RoleLabel(role types.Role) string {
	switch role {
	case types.RoleUser:
		return userStyle.Render("You")
	case types.RoleAssistant:
		return assistantStyle.Render("Assistant")
	case types.RoleTool:
		return toolStyle.Render("Tool")
	case types.RoleSystem:
		return systemStyle.Render("System")
	default:
		return systemStyle.Render(string(role))
	}
}

// RenderMessage renders one message as a label line followed by its text
func RenderMessage(msg types.Message, selected bool) string {
	label := RoleLabel(msg.Role)
	if selected {
		label = selectedStyle.Render("▸ ") + label
	}
	if !msg.CreatedAt.IsZero() {
		label += keyStyle.Render(" " + msg.CreatedAt.Local().Format("15:04:05"))
	}
	return label + "\n" + conversation.ContentText(msg)
}

// RenderTimeline renders msgs in server order. selected is the index of the
// highlighted message, or -1.
func RenderTimeline(msgs []types.Message, selected int) string {
	if len(msgs) == 0 {
		return keyStyle.Render("No messages yet")
	}

	parts := make([]string, 0, len(msgs))
	for i, msg := range msgs {
		parts = append(parts, RenderMessage(msg, i == selected))
	}
	return strings.Join(parts, "\n\n")
}

// RenderEvent renders one run stream event on a single line
func RenderEvent(ev stream.Event) string {
	name := eventStyle.Render(ev.Name)

	switch ev.Name {
	case "run":
		return fmt.Sprintf("%s %s %s", name, ev.String("stage"), coloredStatus(ev.String("status")))
	case "task":
		return fmt.Sprintf("%s %s %s %s", name, ev.String("task_type"), coloredStatus(ev.String("status")), keyStyle.Render(ev.String("task_id")))
	}

	keys := make([]string, 0, len(ev.Data))
	for k := range ev.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]string, 0, len(keys))
	for _, k := range keys {
		v, ok := ev.Data[k].(string)
		if !ok {
			raw, err := sonic.ConfigStd.MarshalToString(ev.Data[k])
			if err != nil {
				continue
			}
			v = raw
		}
		fields = append(fields, keyStyle.Render(k+"=")+v)
	}
	return strings.TrimSpace(name + " " + strings.Join(fields, " "))
}

// RenderStreamStatus summarises a consumer state for a status line
func RenderStreamStatus(st stream.State) string {
	if st.RunID == "" {
		return keyStyle.Render("no run")
	}

	label := fmt.Sprintf("run %s", shortID(st.RunID))
	if st.Active {
		label += " • live"
	} else {
		label += " • ended"
	}
	label = keyStyle.Render(label + fmt.Sprintf(" • %d events", len(st.Events)))
	if n := len(st.Events); n > 0 {
		label += keyStyle.Render(" • last: ") + RenderEvent(st.Events[n-1])
	}
	return label
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
