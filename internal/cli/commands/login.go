package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/chazo1994/Creatory/internal/cli/types"
	"github.com/chazo1994/Creatory/internal/cli/ui"
)

var (
	loginEmail   string
	registerName string
)

// loginCmd is the login command
var loginCmd = &cobra.Command{
	Use:   "login [server]",
	Short: "authenticate with the studio server",
	Long: `Authenticate with the studio server and save credentials locally.

Your access token and selection are stored in ~/.studioctl/config.yaml and
used automatically for all subsequent commands.

If server is not provided, the configured server is used
(default http://localhost:8000).`,
	Example: `  # Login to the configured server
  $ studioctl login

  # Login to a custom server with an email (prompts for the password)
  $ studioctl login http://studio.example.com -e ada@example.com`,
	Args: cobra.MaximumNArgs(1), // Allow 0 or 1 server argument
	RunE: runLogin,
}

// registerCmd is the register command
var registerCmd = &cobra.Command{
	Use:   "register [server]",
	Short: "create an account on the studio server",
	Long: `Create an account, then log in with it.

The server bootstraps a default workspace and conversation for new accounts,
which become the current selection.`,
	Example: `  $ studioctl register -e ada@example.com --name "Ada"`,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runRegister,
}

// logoutCmd is the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "forget the stored token and selection",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Email for authentication")
	registerCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Email for the new account")
	registerCmd.Flags().StringVar(&registerName, "name", "", "Display name")

	// Silence usage to avoid showing help on every error
	loginCmd.SilenceUsage = true
	registerCmd.SilenceUsage = true
	logoutCmd.SilenceUsage = true
}

// promptCredentials asks for whatever is missing
func promptCredentials(confirm bool) (string, error) {
	if loginEmail == "" {
		prompt := &survey.Input{
			Message: "Email:",
		}
		if err := survey.AskOne(prompt, &loginEmail, survey.WithValidator(survey.Required)); err != nil {
			ui.PrintError("failed to read email: %v", err)
			return "", fmt.Errorf("input failed")
		}
	}

	// Prompt for password (hidden input)
	var password string
	prompt := &survey.Password{
		Message: "Password:",
	}
	if err := survey.AskOne(prompt, &password, survey.WithValidator(survey.Required)); err != nil {
		ui.PrintError("failed to read password: %v", err)
		return "", fmt.Errorf("input failed")
	}

	if confirm {
		var again string
		if err := survey.AskOne(&survey.Password{Message: "Confirm password:"}, &again); err != nil {
			ui.PrintError("failed to read password: %v", err)
			return "", fmt.Errorf("input failed")
		}
		if again != password {
			ui.PrintError("passwords do not match")
			return "", fmt.Errorf("input failed")
		}
	}
	return password, nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	return authenticate(args, false)
}

func runRegister(cmd *cobra.Command, args []string) error {
	return authenticate(args, true)
}

func authenticate(args []string, register bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	server := ""
	if len(args) > 0 {
		server = args[0]
	}
	a, err := loadApp(false, server)
	if err != nil {
		return err
	}

	password, err := promptCredentials(register)
	if err != nil {
		return err
	}

	ui.PrintInfo("Connecting to %s...", a.api.Server())

	var resp *types.AuthResponse
	if register {
		resp, err = a.api.Register(ctx, loginEmail, password, registerName)
	} else {
		resp, err = a.api.Login(ctx, loginEmail, password)
	}
	if err != nil {
		title := "Login Failed"
		if register {
			title = "Registration Failed"
		}
		ui.PrintErrorBox(title, err.Error())
		return fmt.Errorf("authentication failed")
	}

	// a new identity never inherits the previous selection
	a.store.Logout()
	a.store.SetAuth(*resp)

	workspaces, err := a.api.ListWorkspaces(ctx)
	if err != nil {
		ui.PrintWarning("logged in, but listing workspaces failed: %v", err)
	} else {
		a.store.SetWorkspaces(workspaces)
	}

	snap := a.store.Snapshot()
	successContent := fmt.Sprintf(`Email:          %s
User ID:        %s
Token expires:  in %s
Workspace:      %s
Config saved:   %s`,
		resp.User.Email,
		resp.User.ID,
		time.Duration(resp.Token.ExpiresIn)*time.Second,
		orNone(snap.WorkspaceID),
		a.cfg.Path(),
	)

	if register {
		ui.PrintBanner("Welcome to Creatory Studio")
	}
	ui.PrintSuccessBox("✓ Login Successful", successContent)

	// Display usage hints
	fmt.Println()
	ui.PrintInfo("You can now use the following commands:")
	ui.PrintBold("  studioctl conversation list   # Conversations of the workspace")
	ui.PrintBold("  studioctl chat                # Dual-thread chat")
	ui.PrintBold("  studioctl workflow list       # Workflow templates")

	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := loadApp(false, "")
	if err != nil {
		return err
	}
	if !a.store.Snapshot().Authenticated() {
		ui.PrintInfo("Not logged in")
		return nil
	}

	a.store.Logout()
	ui.PrintSuccess("Logged out of %s", a.api.Server())
	return nil
}

func orNone(id string) string {
	if id == "" {
		return "(none)"
	}
	return id
}
