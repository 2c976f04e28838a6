package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Spok95/subpass/internal/app"
	"github.com/Spok95/subpass/internal/config"
	"github.com/Spok95/subpass/internal/domain/address"
	"github.com/Spok95/subpass/internal/export"
	"github.com/Spok95/subpass/internal/infra/logger"
	"github.com/Spok95/subpass/migrations"
)

type rootOptions struct {
	configPath string
	as         string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "subpassctl",
		Short:         "Administer the subpass service",
		Long:          `Operator tooling for subpass: migrations, inspection and privileged actions`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config/example.yaml", "path to the YAML config")
	root.PersistentFlags().StringVar(&opts.as, "as", "", "address to act as (defaults to lifecycle.owner)")

	root.AddCommand(
		newMigrateCmd(opts),
		newShowCmd(opts),
		newPauseCmd(opts, true),
		newPauseCmd(opts, false),
		newSetURICmd(opts),
		newExportCmd(opts),
	)
	return root
}

// withEnv loads config and opens the store for one command run.
func withEnv(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, cfg config.Config, env *app.Env) error) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if cfg.App.Env == "dev" {
		log = logger.New(cfg.App.Env)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	env, err := app.Open(ctx, cfg, log, false)
	if err != nil {
		return err
	}
	defer env.Close()
	return fn(ctx, cfg, env)
}

func (o *rootOptions) actor(cfg config.Config) (address.Address, error) {
	if o.as != "" {
		return address.Parse(o.as)
	}
	if a := cfg.Owner(); !a.IsZero() {
		return a, nil
	}
	return "", fmt.Errorf("no actor: pass --as or set lifecycle.owner")
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	var status bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if cfg.Store.Driver != config.DriverPostgres {
				return fmt.Errorf("migrate needs store.driver=%s", config.DriverPostgres)
			}
			if !status {
				if err := migrations.Up(cfg.Postgres.DSN); err != nil {
					return err
				}
			}
			v, err := migrations.Version(cfg.Postgres.DSN)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
			return nil
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "only print the applied version")
	return cmd
}

type showOutput struct {
	Owner          address.Address   `json:"owner"`
	ClassID        uint64            `json:"subscriptionClassId"`
	SeatLimit      int               `json:"seatLimit"`
	ExpirationDate int64             `json:"expirationDate"`
	Balance        uint64            `json:"balance"`
	Users          []address.Address `json:"users"`
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <address>",
		Short: "Print the subscription record of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := address.Parse(args[0])
			if err != nil {
				return err
			}
			return withEnv(cmd, opts, func(ctx context.Context, _ config.Config, env *app.Env) error {
				sub, err := env.Controller.SubscriptionsToUser(ctx, owner)
				if err != nil {
					return err
				}
				seats, err := env.Controller.GetUsersAllowed(ctx, owner)
				if err != nil {
					return err
				}
				var bal uint64
				if sub.Active() {
					if bal, err = env.Controller.BalanceOf(ctx, owner, sub.ClassID); err != nil {
						return err
					}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(showOutput{
					Owner:          owner,
					ClassID:        sub.ClassID,
					SeatLimit:      sub.SeatLimit,
					ExpirationDate: sub.ExpiresAt,
					Balance:        bal,
					Users:          seats,
				})
			})
		},
	}
}

func newPauseCmd(opts *rootOptions, pause bool) *cobra.Command {
	use, short := "pause", "Stop purchases, seat grants and transfers"
	if !pause {
		use, short = "unpause", "Resume normal operation"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, opts, func(ctx context.Context, cfg config.Config, env *app.Env) error {
				actor, err := opts.actor(cfg)
				if err != nil {
					return err
				}
				if pause {
					err = env.Controller.Pause(ctx, actor)
				} else {
					err = env.Controller.Unpause(ctx, actor)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%sd\n", use)
				return nil
			})
		},
	}
}

func newSetURICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-uri <template>",
		Short: "Replace the metadata URI template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, opts, func(ctx context.Context, cfg config.Config, env *app.Env) error {
				actor, err := opts.actor(cfg)
				if err != nil {
					return err
				}
				if err := env.Controller.SetURI(ctx, actor, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "uri updated")
				return nil
			})
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file.xlsx]",
		Short: "Write subscriptions and seat grants to a spreadsheet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, opts, func(ctx context.Context, _ config.Config, env *app.Env) error {
				now := time.Now()
				path := export.FileName(now)
				if len(args) == 1 {
					path = args[0]
				}
				data, err := export.Workbook(ctx, env.Controller, now)
				if err != nil {
					return err
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
				return nil
			})
		},
	}
}
