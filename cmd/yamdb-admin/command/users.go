package command

import (
	"context"
	"errors"
	"fmt"
	"io"

	"yamdb/database"
	"yamdb/internal/apperror"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"
	"yamdb/internal/microservices/http-api/validation"

	"github.com/spf13/cobra"
)

var (
	suUsername string
	suEmail    string
)

var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create an admin account and print its confirmation code",
	Long: `Creates a user with role admin and the superuser flag set. The confirmation code is
printed instead of mailed; exchange it at POST /api/v1/auth/token/.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close(db)

		return createSuperuser(cmd.Context(), repository.NewUserRepository(db), cmd.OutOrStdout(), suUsername, suEmail)
	},
}

func createSuperuser(ctx context.Context, users repository.UserRepository, out io.Writer, username, email string) error {
	if err := validation.Username(username); err != nil {
		return err
	}
	if err := validation.Email(email); err != nil {
		return err
	}

	code := service.NewConfirmationCode()
	user := &models.User{
		Username:         username,
		Email:            email,
		Role:             models.RoleAdmin,
		IsStaff:          true,
		IsSuperuser:      true,
		ConfirmationCode: &code,
	}
	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return fmt.Errorf("user %q or email %q already exists", username, email)
		}
		return err
	}

	fmt.Fprintln(out, "✓ Superuser created successfully!")
	fmt.Fprintf(out, "Username: %s\n", user.Username)
	fmt.Fprintf(out, "Confirmation code: %s\n", code)
	return nil
}

var setRoleCmd = &cobra.Command{
	Use:   "setrole [username] [user|moderator|admin]",
	Short: "Change the role of an existing user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close(db)

		return setRole(cmd.Context(), repository.NewUserRepository(db), cmd.OutOrStdout(), args[0], models.Role(args[1]))
	},
}

func setRole(ctx context.Context, users repository.UserRepository, out io.Writer, username string, role models.Role) error {
	if err := validation.Role(role); err != nil {
		return err
	}
	user, err := users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	user.Role = role
	if err := users.Update(ctx, user); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ %s is now %s\n", user.Username, user.Role)
	return nil
}

func init() {
	createSuperuserCmd.Flags().StringVar(&suUsername, "username", "", "username of the new admin")
	createSuperuserCmd.Flags().StringVar(&suEmail, "email", "", "email of the new admin")
	_ = createSuperuserCmd.MarkFlagRequired("username")
	_ = createSuperuserCmd.MarkFlagRequired("email")
}
