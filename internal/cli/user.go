package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/AsifaBeedi/jewel-site-booster/internal/store"
)

const (
	minUsernameLength = 3
	minPasswordLength = 8
)

// passwordPrompt is swapped out in tests
var passwordPrompt = readPassword

// hashCost is lowered in tests
var hashCost = bcrypt.DefaultCost

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage dashboard users",
	Long:  `Manage dashboard users via CLI. Create, list, and delete users, or reset a password.`,
}

var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a new user",
	Long: `Create a new user with username and password.

The password is hashed with bcrypt before it is stored.

Example:
  booster user create admin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]
		if len(username) < minUsernameLength {
			return fmt.Errorf("username must be at least %d characters long", minUsernameLength)
		}

		st, closeDB, err := openStore()
		if err != nil {
			return err
		}
		defer closeDB()

		ctx := cmd.Context()
		if _, err := st.UserByUsername(ctx, username); err == nil {
			return fmt.Errorf("user '%s' already exists", username)
		} else if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("failed to check existing user: %w", err)
		}

		// Get name (optional)
		name, _ := cmd.Flags().GetString("name")
		if name == "" && !cmd.Flags().Changed("name") {
			_, _ = fmt.Fprint(cmd.OutOrStdout(), "Full name (optional): ")
			line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			name = strings.TrimSpace(line)
		}

		hash, err := promptNewPassword(cmd.OutOrStdout(), "Password: ")
		if err != nil {
			return err
		}

		var namePtr *string
		if name != "" {
			namePtr = &name
		}
		user, err := st.CreateUser(ctx, username, hash, namePtr)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "\n✓ User created successfully\n")
		_, _ = fmt.Fprintf(out, "  ID:       %s\n", user.ID)
		_, _ = fmt.Fprintf(out, "  Username: %s\n", user.Username)
		if user.Name != nil {
			_, _ = fmt.Fprintf(out, "  Name:     %s\n", *user.Name)
		}
		_, _ = fmt.Fprintf(out, "  Created:  %s\n", user.CreatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, closeDB, err := openStore()
		if err != nil {
			return err
		}
		defer closeDB()

		users, err := st.ListUsers(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(users) == 0 {
			_, _ = fmt.Fprintln(out, "No users found")
			return nil
		}

		_, _ = fmt.Fprintf(out, "\nTotal users: %d\n\n", len(users))
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tCREATED")
		for _, user := range users {
			name := "-"
			if user.Name != nil && *user.Name != "" {
				name = *user.Name
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				user.ID, user.Username, name, user.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a user",
	Long: `Delete a user by username.

This will also delete all sessions for the user.

Example:
  booster user delete admin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]

		st, closeDB, err := openStore()
		if err != nil {
			return err
		}
		defer closeDB()

		// Confirm deletion
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Are you sure you want to delete user '%s'? (yes/no): ", username)
			response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			response = strings.ToLower(strings.TrimSpace(response))
			if response != "yes" && response != "y" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled")
				return nil
			}
		}

		if err := st.DeleteUser(cmd.Context(), username); errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("user '%s' not found", username)
		} else if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ User '%s' deleted successfully\n", username)
		return nil
	},
}

var userResetPasswordCmd = &cobra.Command{
	Use:   "reset-password <username>",
	Short: "Reset user password",
	Long: `Reset password for a user. Every existing session of the user is
signed out.

Example:
  booster user reset-password admin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]

		st, closeDB, err := openStore()
		if err != nil {
			return err
		}
		defer closeDB()

		ctx := cmd.Context()
		if _, err := st.UserByUsername(ctx, username); errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("user '%s' not found", username)
		} else if err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}

		hash, err := promptNewPassword(cmd.OutOrStdout(), "New password: ")
		if err != nil {
			return err
		}

		if err := st.UpdatePassword(ctx, username, hash); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Password reset successfully for '%s'\n", username)
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "  All existing sessions have been invalidated")
		return nil
	},
}

// promptNewPassword asks twice and returns the bcrypt hash.
func promptNewPassword(out io.Writer, prompt string) (string, error) {
	password, err := passwordPrompt(out, prompt)
	if err != nil {
		return "", err
	}
	confirmPassword, err := passwordPrompt(out, "Confirm password: ")
	if err != nil {
		return "", err
	}

	if password != confirmPassword {
		return "", fmt.Errorf("passwords do not match")
	}
	if len(password) < minPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// readPassword reads a password from stdin without echoing
func readPassword(out io.Writer, prompt string) (string, error) {
	_, _ = fmt.Fprint(out, prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	_, _ = fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(string(bytePassword)), nil
}

func init() {
	// Add flags
	userCreateCmd.Flags().StringP("name", "n", "", "User's full name")
	userDeleteCmd.Flags().BoolP("force", "f", false, "Skip confirmation prompt")

	// Add subcommands
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userDeleteCmd)
	userCmd.AddCommand(userResetPasswordCmd)

	// Register with root command
	RootCmd.AddCommand(userCmd)
}
