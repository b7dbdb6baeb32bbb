package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/chazo1994/Creatory/internal/cli/types"
	"github.com/chazo1994/Creatory/internal/cli/ui"
	"github.com/chazo1994/Creatory/internal/conversation"
	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/stream"
)

var (
	sendQuick bool
	sendWatch bool
)

// sendCmd sends one prompt without the TUI
var sendCmd = &cobra.Command{
	Use:   "send <prompt>",
	Short: "send a prompt on the main or quick thread",
	Long: `Send one prompt to the director on the selected conversation and print the
assistant's reply. The main thread is used unless --quick is given.`,
	Example: `  $ studioctl send "Outline a launch plan"
  $ studioctl send --quick "What tone fits a B2B audience?"
  $ studioctl send --watch "Draft the announcement"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

// injectCmd injects a quick-thread message into the main thread
var injectCmd = &cobra.Command{
	Use:   "inject <message-id>",
	Short: "inject a quick-thread answer into the main thread",
	Long: `Copy an assistant message of the quick thread into the main thread as a
context block. Injecting the same message twice creates two injections.`,
	Args: cobra.ExactArgs(1),
	RunE: runInject,
}

// watchCmd prints a run's event stream
var watchCmd = &cobra.Command{
	Use:   "watch <run-id>",
	Short: "follow the event stream of a run",
	Long: `Attach to the event stream of a run and print each event as it arrives.
Stops when the server closes the stream or on Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	sendCmd.Flags().BoolVarP(&sendQuick, "quick", "q", false, "Send on the quick thread")
	sendCmd.Flags().BoolVarP(&sendWatch, "watch", "w", false, "Follow the run's event stream after sending")

	// Silence usage to avoid showing help on every error
	sendCmd.SilenceUsage = true
	injectCmd.SilenceUsage = true
	watchCmd.SilenceUsage = true
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	a, err := loadApp(true, "")
	if err != nil {
		return err
	}
	kind := types.ThreadMain
	if sendQuick {
		kind = types.ThreadQuick
	}

	coord := conversation.NewCoordinator(a.api, a.store, a.logger)
	result, err := coord.Send(ctx, kind, strings.Join(args, " "))
	if err != nil {
		ui.PrintError("send failed: %s", domain.UserMessage(err))
		return fmt.Errorf("send failed")
	}

	fmt.Println(ui.RenderMessage(result.AssistantMessage, false))
	fmt.Println()
	ui.PrintInfo("Run %s: %s (%d tasks)", result.AgentRun.ID, result.AgentRun.Status, len(result.Tasks))
	for _, task := range result.Tasks {
		fmt.Printf("  • %-16s %s\n", task.TaskType, task.Status)
	}

	if sendWatch {
		fmt.Println()
		return followRun(a, result.AgentRun.ID)
	}
	return nil
}

func runInject(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := loadApp(true, "")
	if err != nil {
		return err
	}
	coord := conversation.NewCoordinator(a.api, a.store, a.logger)

	msgs, err := coord.Timeline(ctx, types.ThreadQuick)
	if err != nil {
		ui.PrintError("failed to load quick thread: %s", domain.UserMessage(err))
		return fmt.Errorf("load quick thread failed")
	}

	for _, msg := range msgs {
		if msg.ID != args[0] {
			continue
		}
		if !coord.CanInject(msg) {
			ui.PrintError("only assistant messages can be injected")
			return fmt.Errorf("message not injectable")
		}
		_, err := coord.Inject(ctx, msg)
		status := conversation.InjectStatus(err)
		if err != nil {
			ui.PrintError("%s", status)
			return fmt.Errorf("inject failed")
		}
		ui.PrintSuccess("%s", status)
		return nil
	}

	ui.PrintError("message %s is not on the quick thread", args[0])
	return fmt.Errorf("message not found")
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := loadApp(true, "")
	if err != nil {
		return err
	}
	return followRun(a, args[0])
}

// followRun prints runID's events until the stream ends or the user interrupts
func followRun(a *app, runID string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	consumer := stream.NewConsumer(a.api, a.logger)
	defer consumer.Close()
	consumer.Subscribe(a.store.Snapshot().Token, runID)

	ui.PrintInfo("Watching run %s (Ctrl+C to stop)", runID)
	printed := 0
	for {
		st := consumer.State()
		for _, ev := range st.Events[printed:] {
			fmt.Println(ui.RenderEvent(ev))
		}
		printed = len(st.Events)

		if !st.Active {
			if printed == 0 {
				ui.PrintWarning("stream ended without events")
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-consumer.Changes():
		}
	}
}
