package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

var newUser types.RegisterRequest

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a user account",
	Args:  cobra.NoArgs,
	RunE:  runCreateUser,
}

func init() {
	createUserCmd.Flags().StringVar(&newUser.Email, "email", "", "Email address (required)")
	createUserCmd.Flags().StringVar(&newUser.Username, "username", "", "Username (required)")
	createUserCmd.Flags().StringVar(&newUser.FirstName, "first-name", "", "First name (required)")
	createUserCmd.Flags().StringVar(&newUser.LastName, "last-name", "", "Last name (required)")
	createUserCmd.Flags().StringVar(&newUser.Password, "password", "", "Password, at least 8 characters (required)")
	for _, name := range []string{"email", "username", "first-name", "last-name", "password"} {
		_ = createUserCmd.MarkFlagRequired(name)
	}
}

func runCreateUser(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.log.Sync()

	auth := service.NewAuthService(repository.NewUserRepo(e.db, e.log), validation.New(), e.cfg.JWTSecret, e.cfg.JWTTTL, e.log)
	user, err := auth.Register(cmd.Context(), newUser)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created user %d (%s)\n", user.ID, user.Email)
	return nil
}
