package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/Adithya-charan/docuExtract/pkg/auth"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in on this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			in := bufio.NewReader(os.Stdin)

			var err error
			if email == "" {
				if email, err = prompt(in, "Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = promptSecret(in, "Password: "); err != nil {
					return err
				}
			}

			app, st, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			u, err := app.Login(ctx, email, password)
			if err != nil {
				return err
			}
			if outputJSON {
				return printJSON(u)
			}
			color.Green("Signed in as %s (%s)", u.Name, u.Email)
			if !st.IsAPIAvailable(ctx) {
				color.Yellow("Offline mode: the service is unreachable, using this device's store.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when empty)")
	return cmd
}

func newSignupCmd() *cobra.Command {
	var req auth.SignupRequest

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			in := bufio.NewReader(os.Stdin)

			fields := []struct {
				label  string
				value  *string
				secret bool
			}{
				{"Name: ", &req.Name, false},
				{"Email: ", &req.Email, false},
				{"Phone: ", &req.Phone, false},
				{"Password: ", &req.Password, true},
			}
			for _, f := range fields {
				if *f.value != "" {
					continue
				}
				var err error
				if f.secret {
					*f.value, err = promptSecret(in, f.label)
				} else {
					*f.value, err = prompt(in, f.label)
				}
				if err != nil {
					return err
				}
			}

			req = req.Normalize()
			if err := req.Validate(); err != nil {
				return err
			}

			app, st, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			exists, err := st.CheckEmailExists(ctx, req.Email)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("an account with email %s already exists", req.Email)
			}

			// There is no delivery channel; the code is shown on the terminal.
			var otp auth.OTP
			code, err := otp.Issue()
			if err != nil {
				return err
			}
			color.Cyan("Verification code for %s: %s", req.Phone, code)
			entered, err := prompt(in, "Enter code: ")
			if err != nil {
				return err
			}
			if err := otp.Verify(entered); err != nil {
				return err
			}

			u, err := app.Signup(ctx, req)
			if err != nil {
				return err
			}
			if outputJSON {
				return printJSON(u)
			}
			color.Green("Welcome, %s. You are signed in.", u.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "Phone number")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out on this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, st, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			if err := app.Logout(); err != nil {
				return err
			}
			if !outputJSON {
				color.Green("Signed out.")
			}
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, st, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			u := app.User()
			if outputJSON {
				return printJSON(u)
			}
			if u == nil {
				fmt.Println("Not signed in.")
				return nil
			}
			fmt.Printf("%s <%s>\nplan: %s  role: %s  joined: %s\n",
				u.Name, u.Email, u.Plan, u.Role, formatMillis(u.JoinedAt))
			return nil
		},
	}
}

func prompt(in *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads without echo when stdin is a terminal.
func promptSecret(in *bufio.Reader, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(in, label)
	}
	fmt.Print(label)
	b, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(b), nil
}
