package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bankfeed-dev/bankfeed/internal/config"
	"github.com/bankfeed-dev/bankfeed/internal/storage"
)

func newInitCommand() *cobra.Command {
	var user string
	var timeZone string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the ledger database and configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			return runInit(cmd, configPath, user, timeZone)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "name of the ledger owner (required)")
	_ = cmd.MarkFlagRequired("user")
	cmd.Flags().StringVar(&timeZone, "time-zone", "UTC", "time zone for date-only statement dates")

	return cmd
}

func runInit(cmd *cobra.Command, configPath, user, timeZone string) error {
	cfg := config.Default(user)
	cfg.Import.TimeZone = timeZone
	if err := config.Save(configPath, cfg); err != nil {
		return err
	}

	store, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	users := store.Repositories().Users

	if _, err := users.FindByName(ctx, user); err == nil {
		return fmt.Errorf("user %q already exists", user)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	created, err := users.Add(ctx, user)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized ledger %s for user %s (%s)\n",
		cfg.Database.Path, created.Name, created.ID)
	return nil
}
