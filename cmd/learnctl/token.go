package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/khoahotran/studyplan/pkg/auth"
)

// tokenCmd mints a bearer token for local development. Identity is owned by an external
// provider in production; this only signs with the configured shared secret.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development bearer token",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cfg.Auth.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret is not configured")
		}

		raw, _ := cmd.Flags().GetString("user")
		userID := uuid.New()
		if raw != "" {
			if userID, err = uuid.Parse(raw); err != nil {
				return fmt.Errorf("--user must be a UUID: %w", err)
			}
		}

		token, err := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan).GenerateToken(userID)
		if err != nil {
			return err
		}

		cmd.Printf("user_id: %s\n", userID)
		cmd.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("user", "", "User id to embed; a random one is generated when empty")
}
