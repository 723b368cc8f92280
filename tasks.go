package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"scoredAPI/internal/auth"
	"scoredAPI/internal/logger"
	"scoredAPI/internal/seed"
)

const devTokenTTL = 30 * 24 * time.Hour

func runMigrate(cmd *cobra.Command, args []string) error {
	pool, err := openPool(cmd.Context())
	if err != nil {
		return err
	}
	defer pool.Close()

	return migrate(cmd.Context(), pool)
}

func runSeed(cmd *cobra.Command, args []string) error {
	if cfg.AppEnv == "production" {
		return fmt.Errorf("refusing to seed a production database")
	}

	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	res, err := seed.New(a.users, a.friends, a.backend).Run(cmd.Context(), seed.Options{
		Users: seedUsers,
		Days:  seedDays,
		Loc:   loc,
	})
	if err != nil {
		return err
	}

	logger.Info("Seed complete", "users", len(res.Users), "friendships", res.Friendships, "pending", res.Pending, "scores", res.Scores)

	out := cmd.OutOrStdout()
	var issuer *auth.HMACVerifier
	if cfg.DevJWTSecret != "" {
		issuer = auth.NewHMACVerifier(cfg.DevJWTSecret)
	}
	for _, u := range res.Users {
		if issuer == nil {
			fmt.Fprintf(out, "%s\t%s\n", u.Username, u.Email)
			continue
		}
		token, err := issuer.Issue(u.ClerkID, devTokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", u.Username, u.Email, token)
	}
	return nil
}
