package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"go-wiki-api/internal/auth"
	"go-wiki-api/internal/data"

	"github.com/spf13/cobra"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var email, name, password, role string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an active user, optionally with a role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || name == "" || password == "" {
				return fmt.Errorf("--email, --name and --password are required")
			}
			store, err := openStore(cmd.Context(), a.cfg.DB)
			if err != nil {
				return err
			}
			defer store.Close()

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			users := data.NewUserRepository(store)
			user := &data.User{Email: email, Name: name, Password: hash}
			if err := users.Create(cmd.Context(), user); err != nil {
				return err
			}
			if role != "" {
				if err := grantRole(a, store, user.ID, role); err != nil {
					if derr := users.Discard(cmd.Context(), user.ID); derr != nil {
						return errors.Join(err, derr)
					}
					return err
				}
			}
			if err := users.SetActive(cmd.Context(), user.ID, true); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", user.ID, user.Email)
			return nil
		},
	}
	create.Flags().StringVar(&email, "email", "", "account email")
	create.Flags().StringVar(&name, "name", "", "display name")
	create.Flags().StringVar(&password, "password", "", "initial password")
	create.Flags().StringVar(&role, "role", auth.RoleMember, "role to grant (empty for none)")

	var active bool
	setActive := &cobra.Command{
		Use:   "set-active <user-id>",
		Short: "Activate or deactivate a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), a.cfg.DB)
			if err != nil {
				return err
			}
			defer store.Close()
			user, err := data.NewUserRepository(store).Update(cmd.Context(), id, active)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\tactive=%t\n", user.ID, user.Active)
			return nil
		},
	}
	setActive.Flags().BoolVar(&active, "active", true, "whether the account may authenticate")

	cmd.AddCommand(create, setActive)
	return cmd
}

func newRoleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Manage authorization roles",
	}
	grant := &cobra.Command{
		Use:   "grant <user-id> <role>",
		Short: "Grant a role (member or admin) to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), a.cfg.DB)
			if err != nil {
				return err
			}
			defer store.Close()
			if _, err := data.NewUserRepository(store).GetByID(cmd.Context(), id); err != nil {
				return fmt.Errorf("user %d: %w", id, err)
			}
			return grantRole(a, store, id, args[1])
		},
	}
	cmd.AddCommand(grant)
	return cmd
}

func newTokenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Work with API tokens",
	}
	issue := &cobra.Command{
		Use:   "issue <user-id>",
		Short: "Print a signed token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			ttl, err := a.cfg.Auth.TokenTTL()
			if err != nil {
				return err
			}
			token, expires, err := auth.NewTokens(a.cfg.Auth.JWTSecret, ttl).Issue(id)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\nexpires %s\n", token, expires.Format(time.RFC3339))
			return nil
		},
	}
	cmd.AddCommand(issue)
	return cmd
}

func parseUserID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}

// grantRole grants role through the stored policy, seeding the defaults
// first so a fresh database is usable from the command line.
func grantRole(a *app, store *data.Store, userID int64, role string) error {
	enforcer, err := auth.NewEnforcer(store.DB(), a.cfg.Auth.PolicyModel)
	if err != nil {
		return err
	}
	if err := auth.SeedDefaultPolicies(enforcer); err != nil {
		return err
	}
	return auth.GrantRole(enforcer, userID, role)
}
