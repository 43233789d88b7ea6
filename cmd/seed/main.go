// Command main runs the database seeder for Agora.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"agora/internal/bootstrap"
	"agora/internal/config"
	"agora/internal/seed"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		opts   seed.Options
		preset string
		clean  bool
	)

	root := &cobra.Command{
		Use:   "agora-seed",
		Short: "Populate the database with demo communities, posts and engagement",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			db, rdb, err := bootstrap.InitRuntime(cfg)
			if err != nil {
				return err
			}

			s := seed.NewSeeder(db, rdb, cfg.JWTSecret)
			if clean {
				if err := s.ClearAll(ctx); err != nil {
					return fmt.Errorf("cleanup failed: %w", err)
				}
				if rdb != nil {
					if err := rdb.FlushDB(ctx).Err(); err != nil {
						return fmt.Errorf("flush cache: %w", err)
					}
				}
			}

			if preset != "" {
				log.Printf("Applying preset %s (ignoring size flags)", preset)
				p, err := seed.LoadPreset(preset)
				if err != nil {
					return err
				}
				if _, err := s.ApplyPreset(ctx, p); err != nil {
					return fmt.Errorf("preset seeding failed: %w", err)
				}
			} else {
				log.Printf("Target: %d users, %d communities, %d posts, %d follows",
					opts.Users, opts.Communities, opts.Posts, opts.Follows)
				if _, err := s.SeedRandom(ctx, opts); err != nil {
					return fmt.Errorf("seeding failed: %w", err)
				}
			}

			log.Printf("All done. Generated users have the password: %s", seed.DefaultPassword)
			return nil
		},
	}

	root.Flags().IntVar(&opts.Users, "users", 50, "number of users to create")
	root.Flags().IntVar(&opts.Communities, "communities", 8, "number of communities to create")
	root.Flags().IntVar(&opts.Posts, "posts", 200, "number of posts to create")
	root.Flags().IntVar(&opts.Follows, "follows", 150, "number of follow edges to attempt")
	root.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed (0 picks one)")
	root.Flags().StringVar(&preset, "preset", "", "apply a YAML preset instead of random data")
	root.Flags().BoolVar(&clean, "clean", false, "delete existing data first")

	return root
}
