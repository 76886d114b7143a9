package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/BearBump/CarTrack/config"
	"github.com/BearBump/CarTrack/internal/models"
	"github.com/BearBump/CarTrack/internal/services/auth"
	"github.com/BearBump/CarTrack/internal/services/statuses"
	"github.com/BearBump/CarTrack/internal/storage/pgstore"
	"github.com/spf13/cobra"
)

type store interface {
	statuses.Repository
	auth.Repository
}

type storeOpener func(ctx context.Context, configPath string) (st store, closeFn func(), err error)

func openPostgres(ctx context.Context, configPath string) (store, func(), error) {
	if configPath == "" {
		return nil, nil, fmt.Errorf("config path is required (--config or configPath env)")
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	st, err := pgstore.New(cfg.Database.ConnString())
	if err != nil {
		return nil, nil, err
	}
	return st, st.Close, nil
}

type seedStatus struct {
	name          string
	isTransit     bool
	notifyOnEntry bool
}

// defaultPipeline: стартовый набор этапов импорта.
var defaultPipeline = []seedStatus{
	{name: "Ordered"},
	{name: "Paid"},
	{name: "At port of departure"},
	{name: "At sea", isTransit: true, notifyOnEntry: true},
	{name: "Arrived at port", notifyOnEntry: true},
	{name: "Customs clearance"},
	{name: "In transit to city", isTransit: true},
	{name: "Ready for pickup", notifyOnEntry: true},
	{name: "Delivered", notifyOnEntry: true},
}

func newRootCmd(open storeOpener) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "cartrackctl",
		Short:         "CarTrack administration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("configPath"), "path to the YAML config")

	root.AddCommand(
		newSeedStatusesCmd(open, &configPath),
		newCreateUserCmd(open, &configPath),
	)
	return root
}

func newSeedStatusesCmd(open storeOpener, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-statuses",
		Short: "Create the default import pipeline (existing names are kept)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, closeFn, err := open(ctx, *configPath)
			if err != nil {
				return err
			}
			defer closeFn()

			svc := statuses.New(st)
			existing, err := svc.List(ctx)
			if err != nil {
				return err
			}
			have := make(map[string]bool, len(existing))
			for _, s := range existing {
				have[strings.ToLower(s.Name)] = true
			}

			created := 0
			for _, s := range defaultPipeline {
				if have[strings.ToLower(s.name)] {
					fmt.Fprintf(cmd.OutOrStdout(), "skip    %s\n", s.name)
					continue
				}
				if _, err := svc.Create(ctx, models.StatusCreateInput{
					Name:          s.name,
					IsTransit:     s.isTransit,
					NotifyOnEntry: s.notifyOnEntry,
				}); err != nil {
					return err
				}
				created++
				fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", s.name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d status(es) created\n", created)
			return nil
		},
	}
}

func newCreateUserCmd(open storeOpener, configPath *string) *cobra.Command {
	var in models.UserCreateInput
	var role string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an operator account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Password == "" {
				in.Password = os.Getenv("CARTRACK_PASSWORD")
			}
			in.Role = models.Role(strings.ToUpper(role))

			ctx := cmd.Context()
			st, closeFn, err := open(ctx, *configPath)
			if err != nil {
				return err
			}
			defer closeFn()

			u, err := auth.New(st, nil, "", 0).CreateUser(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %d created: %s (%s)\n", u.ID, u.Email, u.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "login email")
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Password, "password", "", "password (or CARTRACK_PASSWORD env)")
	cmd.Flags().StringVar(&role, "role", string(models.RoleStaff), "ADMIN or STAFF")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
