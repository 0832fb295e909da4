package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minjae-ko/playkit/i18n"
)

var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Sign in to the backend",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		email := ""
		if len(args) > 0 {
			email = args[0]
		} else if remembered := app.Session.RememberedEmail(); remembered != "" {
			email = remembered
		}
		if email == "" {
			return fmt.Errorf("email required: playkit login <email>")
		}

		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			if password, err = promptPassword(app.Locale); err != nil {
				return err
			}
		}
		remember, _ := cmd.Flags().GetBool("remember")

		if err := app.Session.Login(cmd.Context(), email, password, remember); err != nil {
			return err
		}
		user := app.Session.CurrentUser()
		fmt.Println(app.Locale.T("auth.welcome", i18n.Vars{"name": user.Name}))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and discard stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := app.Session.Logout(); err != nil {
			return err
		}
		fmt.Println(app.Locale.T("auth.signed_out"))
		return nil
	},
}

func promptPassword(locale *i18n.Bundle) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", locale.T("auth.password"))
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	loginCmd.Flags().String("password", "", "Password (prompted when omitted)")
	loginCmd.Flags().Bool("remember", true, "Remember the email for the next login")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
