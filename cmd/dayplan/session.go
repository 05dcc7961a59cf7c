package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/td0m/dayplan/pkg/auth"
)

func (c *cli) printUser(u auth.User) error {
	if ok, err := c.printJSON(u); ok {
		return err
	}
	fmt.Fprintf(c.out, "%s (%s) <%s>, %s\n", u.Name, u.Username, u.Email, u.Role)
	return nil
}

func (c *cli) loginCmd() *cobra.Command {
	var name, username string
	var instant bool
	cmd := &cobra.Command{
		Use:   "login EMAIL",
		Short: "Start a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.workspace(cmd.Context())
			if err != nil {
				return err
			}
			if !instant {
				if err := auth.Pace(cmd.Context(), 600*time.Millisecond, nil); err != nil {
					return err
				}
			}
			u, err := ws.Auth.Login(auth.User{Email: args[0], Name: name, Username: username})
			if err != nil {
				return err
			}
			return c.printUser(u)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to the username)")
	cmd.Flags().StringVar(&username, "username", "", "username (defaults to the part of the email before @)")
	cmd.Flags().BoolVar(&instant, "instant", false, "skip the login delay")
	return cmd
}

func (c *cli) demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Log in with the demo account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := c.workspace(cmd.Context())
			if err != nil {
				return err
			}
			u, err := ws.Auth.DemoLogin()
			if err != nil {
				return err
			}
			return c.printUser(u)
		},
	}
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := c.workspace(cmd.Context())
			if err != nil {
				return err
			}
			return ws.Auth.Logout()
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := c.workspace(cmd.Context())
			if err != nil {
				return err
			}
			u, ok := ws.Auth.Current()
			if !ok {
				return auth.ErrNotAuthenticated
			}
			return c.printUser(u)
		},
	}
}

func (c *cli) profileCmd() *cobra.Command {
	var p auth.ProfilePatch
	fields := map[string]**string{
		"name":     &p.Name,
		"username": &p.Username,
		"email":    &p.Email,
		"avatar":   &p.Avatar,
	}
	values := map[string]*string{}
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update the profile of the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var changed []string
			for flag, field := range fields {
				if cmd.Flags().Changed(flag) {
					*field = values[flag]
					changed = append(changed, flag)
				}
			}
			if len(changed) == 0 {
				return fmt.Errorf("nothing to change, use one of --%s", strings.Join([]string{"name", "username", "email", "avatar"}, ", --"))
			}
			ws, err := c.workspace(cmd.Context())
			if err != nil {
				return err
			}
			u, err := ws.Auth.UpdateProfile(p)
			if err != nil {
				return err
			}
			return c.printUser(u)
		},
	}
	for flag := range fields {
		values[flag] = cmd.Flags().String(flag, "", "new "+flag)
	}
	return cmd
}
