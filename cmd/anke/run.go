package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ankeapp/anke-backend/internal/autovoter"
	"github.com/ankeapp/anke-backend/internal/config"
	"github.com/ankeapp/anke-backend/internal/database"
)

// runCmd executes one simulator batch from the command line and prints
// the summary, bypassing the HTTP layer. Useful for operating the
// simulator from a shell or a systemd timer.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one engagement-simulation batch and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		db, err := database.New(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		store := autovoter.NewStore(db.GetDB())
		engine := autovoter.New(store, autovoter.Config{
			EnvAPIKey: cfg.OpenAIAPIKey,
			Model:     cfg.OpenAIModel,
			BaseURL:   cfg.OpenAIBaseURL,
		}, log)

		res, err := engine.Run(cmd.Context())
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}
