package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abduss/storefront/internal/auth"
	"github.com/abduss/storefront/internal/guard"
	"github.com/abduss/storefront/internal/session"
	"github.com/spf13/cobra"
)

// readPassword falls back to one line of stdin when no flag value was given.
func readPassword(cmd *cobra.Command, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLoginCmd(c *cli) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in and store the credential pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			result, err := c.app.Auth.Login(cmd.Context(), auth.LoginInput{Email: args[0], Password: pw})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (%s), home %s\n",
				result.User.Email, result.User.Role, c.app.Auth.RedirectPath())
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (read from stdin when empty)")
	return cmd
}

func newRegisterCmd(c *cli) *cobra.Command {
	var input auth.RegisterInput
	var role string
	cmd := &cobra.Command{
		Use:   "register <email>",
		Short: "Create an account and sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd, input.Password)
			if err != nil {
				return err
			}
			input.Email, input.Password, input.Role = args[0], pw, session.Role(role)
			result, err := c.app.Auth.Register(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s)\n", result.User.Email, result.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input.Password, "password", "p", "", "Password (read from stdin when empty)")
	cmd.Flags().StringVar(&input.FullName, "name", "", "Full name")
	cmd.Flags().StringVar(&input.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&input.Address, "address", "", "Address")
	cmd.Flags().StringVar(&role, "role", "CUSTOMER", "CUSTOMER or SELLER")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the refresh token and clear stored credentials",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			c.app.Auth.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
		},
	}
}

func newWhoamiCmd(c *cli) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if remote {
				account, err := c.app.Auth.Me(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), account)
			}
			profile, ok := c.app.Auth.CurrentUser()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "not signed in")
				return nil
			}
			return printJSON(cmd.OutOrStdout(), profile)
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "Ask the backend instead of the cached profile")
	return cmd
}

func newStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session state and the reachable navigation table",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			sess := c.app.Auth.Session()
			fmt.Fprintf(out, "api:           %s\n", c.app.Gateway.BaseURL())
			fmt.Fprintf(out, "authenticated: %t\n", sess.Authenticated)
			fmt.Fprintf(out, "role:          %s\n", sess.Role())
			if exp, ok := c.app.Auth.TokenExpiry(); ok {
				fmt.Fprintf(out, "token expires: %s\n", exp.Local().Format(time.RFC1123))
			}
			fmt.Fprintln(out, "routes:")
			for _, r := range guard.Routes {
				d := r.Check(sess)
				if d.Allow {
					fmt.Fprintf(out, "  %-20s allowed\n", r.Path)
				} else {
					fmt.Fprintf(out, "  %-20s -> %s\n", r.Path, d.Redirect)
				}
			}
		},
	}
}

func newOpenCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "open <route>",
		Short: "Check whether the current session may enter a route",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decision, ok := guard.Navigate(args[0], c.app.Auth.Session())
			if !ok {
				return fmt.Errorf("unknown route %q", args[0])
			}
			if decision.Allow {
				fmt.Fprintf(cmd.OutOrStdout(), "open %s\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "redirect %s\n", decision.Redirect)
			return nil
		},
	}
}
