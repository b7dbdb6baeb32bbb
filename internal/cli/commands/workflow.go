package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/chazo1994/Creatory/internal/cli/loader"
	"github.com/chazo1994/Creatory/internal/cli/ui"
	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/workflow"
)

var (
	previewFile string
	pushFile    string
)

// workflowCmd is the parent workflow command
var workflowCmd = &cobra.Command{
	Use:     "workflow",
	Aliases: []string{"wf"},
	Short:   "browse and run workflow templates",
	Long: `Browse the workflow templates of the selected workspace, render their graph
and run them. A run executes nodes in order and pauses at the first human
gate. Human gate nodes are marked with ⏸ whatever their state.`,
	Example: `  $ studioctl workflow list
  $ studioctl workflow show
  $ studioctl workflow run <template-id>

  # Create a template in the selected workspace from a file
  $ studioctl workflow push -f launch.yaml

  # Render a local template file without a server
  $ studioctl workflow preview -f launch.yaml`,
}

var workflowListCmd = &cobra.Command{
	Use:   "list",
	Short: "list templates of the selected workspace",
	Args:  cobra.NoArgs,
	RunE:  runWorkflowList,
}

var workflowShowCmd = &cobra.Command{
	Use:   "show [template-id]",
	Short: "render a template graph",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWorkflowShow,
}

var workflowRunCmd = &cobra.Command{
	Use:   "run [template-id]",
	Short: "run a template and render the result",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWorkflowRun,
}

var workflowPreviewCmd = &cobra.Command{
	Use:   "preview -f <file>",
	Short: "render a template from a YAML file",
	Args:  cobra.NoArgs,
	RunE:  runWorkflowPreview,
}

var workflowPushCmd = &cobra.Command{
	Use:   "push -f <file>",
	Short: "create a template in the selected workspace from a YAML file",
	Args:  cobra.NoArgs,
	RunE:  runWorkflowPush,
}

func init() {
	workflowPreviewCmd.Flags().StringVarP(&previewFile, "file", "f", "", "YAML file containing a WorkflowTemplate")
	_ = workflowPreviewCmd.MarkFlagRequired("file")

	workflowPushCmd.Flags().StringVarP(&pushFile, "file", "f", "", "YAML file containing a WorkflowTemplate")
	_ = workflowPushCmd.MarkFlagRequired("file")

	workflowCmd.AddCommand(workflowListCmd, workflowShowCmd, workflowRunCmd, workflowPreviewCmd, workflowPushCmd)

	// Silence usage to avoid showing help on every error
	for _, c := range []*cobra.Command{workflowCmd, workflowListCmd, workflowShowCmd, workflowRunCmd, workflowPreviewCmd, workflowPushCmd} {
		c.SilenceUsage = true
	}
}

// openPanel loads templates and selects templateID when given
func openPanel(ctx context.Context, a *app, templateID string) (*workflow.Panel, error) {
	if _, err := a.requireWorkspace(); err != nil {
		return nil, err
	}

	panel := workflow.NewPanel(a.api, a.store, a.logger)
	if templateID != "" {
		panel.Select(templateID)
	}
	if _, err := panel.Templates(ctx); err != nil {
		ui.PrintError("failed to list templates: %s", domain.UserMessage(err))
		return nil, fmt.Errorf("list templates failed")
	}
	if panel.Selected() == "" {
		ui.PrintInfo("No workflow templates in this workspace")
		return nil, fmt.Errorf("no templates")
	}
	return panel, nil
}

func runWorkflowList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := loadApp(true, "")
	if err != nil {
		return err
	}
	if _, err := a.requireWorkspace(); err != nil {
		return err
	}

	panel := workflow.NewPanel(a.api, a.store, a.logger)
	templates, err := panel.Templates(ctx)
	if err != nil {
		ui.PrintError("failed to list templates: %s", domain.UserMessage(err))
		return fmt.Errorf("list templates failed")
	}
	fmt.Println(ui.RenderTemplates(templates, panel.Selected()))
	return nil
}

func runWorkflowShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := loadApp(true, "")
	if err != nil {
		return err
	}
	panel, err := openPanel(ctx, a, firstArg(args))
	if err != nil {
		return err
	}

	graph, err := panel.Graph(ctx)
	if err != nil {
		ui.PrintError("failed to load template: %s", domain.UserMessage(err))
		return fmt.Errorf("load template failed")
	}
	fmt.Println(ui.RenderGraph(graph))
	return nil
}

func runWorkflowRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	a, err := loadApp(true, "")
	if err != nil {
		return err
	}
	panel, err := openPanel(ctx, a, firstArg(args))
	if err != nil {
		return err
	}

	ui.PrintInfo("Running template %s...", panel.Selected())
	run, err := panel.Run(ctx)
	if err != nil {
		ui.PrintErrorBox("Run Failed", domain.UserMessage(err))
		return fmt.Errorf("workflow run failed")
	}

	graph, err := panel.Graph(ctx)
	if err != nil {
		ui.PrintError("failed to reload template: %s", domain.UserMessage(err))
		return fmt.Errorf("load template failed")
	}
	fmt.Println(ui.RenderGraph(graph))
	fmt.Println()
	fmt.Println(ui.RenderRunSummary(run))
	return nil
}

func runWorkflowPreview(cmd *cobra.Command, args []string) error {
	ui.PrintInfo("Loading template from file: %s", previewFile)

	file, err := loader.LoadFromFile(previewFile)
	if err != nil {
		ui.PrintError("failed to load file: %v", err)
		return fmt.Errorf("file load failed")
	}
	for _, e := range file.DanglingEdges() {
		ui.PrintWarning("edge %s -> %s references an undeclared node and is not drawn", e.Source, e.Target)
	}

	fmt.Println(ui.RenderGraph(workflow.Build(file.ToDetail(), file.ToRun())))
	return nil
}

func runWorkflowPush(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	file, err := loader.LoadFromFile(pushFile)
	if err != nil {
		ui.PrintError("failed to load file: %v", err)
		return fmt.Errorf("file load failed")
	}

	a, err := loadApp(true, "")
	if err != nil {
		return err
	}
	wsID, err := a.requireWorkspace()
	if err != nil {
		return err
	}
	for _, e := range file.DanglingEdges() {
		ui.PrintWarning("edge %s -> %s references an undeclared node", e.Source, e.Target)
	}

	detail, err := a.api.CreateTemplate(ctx, file.ToCreateRequest(wsID))
	if err != nil {
		ui.PrintError("failed to create template: %s", domain.UserMessage(err))
		return fmt.Errorf("create template failed")
	}

	ui.PrintSuccess("Template %s created (%s)", detail.Name, detail.ID)
	fmt.Println(ui.RenderGraph(workflow.Build(detail, nil)))
	return nil
}

func firstArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
