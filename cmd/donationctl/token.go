package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/spf13/cobra"

	"animal-donations/pkg/jwtfactory"
)

func tokenCmd() *cobra.Command {
	var subject string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin token for catalog writes",
		Long: `Issue a bearer token accepted by POST /api/animals.

The token is signed with ADMIN_JWT_SECRET, the same secret the server
uses to verify it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadEnv(); err != nil {
				return err
			}
			secret := os.Getenv("ADMIN_JWT_SECRET")
			if secret == "" {
				return errors.New("ADMIN_JWT_SECRET is not set")
			}
			tokenAuth := jwtauth.New("HS256", []byte(secret), nil)
			token, err := jwtfactory.New(tokenAuth, ttl).GenerateAdmin(subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "operator", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")

	return cmd
}
