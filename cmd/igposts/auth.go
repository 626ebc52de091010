package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"igposts/pkg/auth"
	"igposts/pkg/ui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored browser session",
	Long: `Manage the browser session igposts uses for profiles that require a login.

Sessions are stored in the system keychain when one is available and in an
encrypted file under the igposts config directory otherwise. A session in
the config file or in IGPOSTS_SESSION_ID takes precedence over a stored one.`,
}

var authSetCmd = &cobra.Command{
	Use:   "set [label]",
	Short: "Store the session cookies of a logged-in browser",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuthSet,
}

var authShowCmd = &cobra.Command{
	Use:   "show [label]",
	Short: "Show the stored session with its cookies masked",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuthShow,
}

var authDeleteCmd = &cobra.Command{
	Use:     "delete [label]",
	Aliases: []string{"rm"},
	Short:   "Remove a stored session",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runAuthDelete,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetCmd, authShowCmd, authDeleteCmd)
}

func labelArg(args []string) string {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0])
	}
	return auth.DefaultLabel
}

func sessionManager() (*auth.Manager, error) {
	dir, err := auth.ConfigDir()
	if err != nil {
		return nil, err
	}
	return auth.NewManager(dir)
}

func runAuthSet(cmd *cobra.Command, args []string) error {
	manager, err := sessionManager()
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	out := cmd.ErrOrStderr()
	auth.WriteCookieGuide(out)
	fmt.Fprintln(out)

	in := bufio.NewReader(cmd.InOrStdin())

	fmt.Fprint(out, "sessionid: ")
	sessionID, err := readSecret(in, out)
	if err != nil {
		return err
	}
	fmt.Fprint(out, "csrftoken: ")
	csrfToken, err := readSecret(in, out)
	if err != nil {
		return err
	}

	session := &auth.Session{
		Label:     labelArg(args),
		SessionID: sessionID,
		CSRFToken: csrfToken,
	}
	if err := manager.Save(session); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	ui.NewConsole(out).Success("Session stored as " + session.Label)
	return nil
}

func runAuthShow(cmd *cobra.Command, args []string) error {
	manager, err := sessionManager()
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	label := labelArg(args)
	session, err := manager.Load(label)
	if errors.Is(err, auth.ErrSessionNotFound) {
		ui.NewConsole(cmd.ErrOrStderr()).Warning("No stored session", label)
		return nil
	}
	if err != nil {
		return err
	}

	console := ui.NewConsole(cmd.OutOrStdout())
	masked := session.Masked()
	console.Info("Label", masked.Label)
	console.Info("Session ID", masked.SessionID)
	console.Info("CSRF Token", masked.CSRFToken)
	console.Info("Saved", masked.SavedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runAuthDelete(cmd *cobra.Command, args []string) error {
	manager, err := sessionManager()
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	label := labelArg(args)
	if err := manager.Delete(label); err != nil {
		return fmt.Errorf("failed to remove session %s: %w", label, err)
	}
	ui.NewConsole(cmd.ErrOrStderr()).Success("Session removed: " + label)
	return nil
}

// readSecret reads a value without echo when stdin is a terminal and falls
// back to a plain line read otherwise
func readSecret(in *bufio.Reader, out io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}

	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
