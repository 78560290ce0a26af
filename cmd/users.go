/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/minetrack/apiserver/config"
	"github.com/minetrack/apiserver/internal/db"
	"github.com/minetrack/apiserver/internal/store"
	"github.com/minetrack/apiserver/types"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
}

var (
	promoteEmail string
	promoteRole  string
)

// usersPromoteCmd sets a role directly in the database. It is the only way
// to create the first superadmin.
var usersPromoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Change the role of an existing account",
	Long: `Changes the role of the account registered under --email. Usage:

	minetrack users promote --email root@example.com --role superadmin
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		role := strings.ToLower(strings.TrimSpace(promoteRole))
		if !types.ValidRole(role) {
			return fmt.Errorf("unknown role %q", promoteRole)
		}

		cfg := config.LoadConfig()
		conn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer conn.Close()

		repo := store.NewUserRepository(conn)
		user, err := repo.GetByEmail(cmd.Context(), strings.TrimSpace(promoteEmail))
		if err != nil {
			return fmt.Errorf("find %s: %w", promoteEmail, err)
		}
		previous := user.Role
		if _, err := repo.UpdateRole(cmd.Context(), user.ID, types.RoleUpdate{Role: &role}); err != nil {
			return fmt.Errorf("update role: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", user.Email, previous, role)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersPromoteCmd)

	usersPromoteCmd.Flags().StringVar(&promoteEmail, "email", "", "email of the account")
	usersPromoteCmd.Flags().StringVar(&promoteRole, "role", types.RoleSuperadmin, "role to assign (user, admin, superadmin)")
	_ = usersPromoteCmd.MarkFlagRequired("email")
}
