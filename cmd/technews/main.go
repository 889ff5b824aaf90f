package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"TechNewsAgent/internal/app"
	"TechNewsAgent/internal/config"
	"TechNewsAgent/internal/logging"
	"TechNewsAgent/internal/usecase"
)

var errRunNotSuccessful = errors.New("run did not succeed")

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfgPath string
	root := &cobra.Command{
		Use:           "technews",
		Short:         "Fetch tech news, summarise business impact and write a daily report",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "YAML config file (default $TECHNEWS_CONFIG)")
	root.AddCommand(runCMD(&cfgPath), scheduleCMD(&cfgPath))

	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errRunNotSuccessful) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func runCMD(cfgPath *string) *cobra.Command {
	var opts usecase.RunOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := build(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer application.Close()

			result := application.RunOnce(cmd.Context(), opts)
			if !result.OK() {
				return errRunNotSuccessful
			}
			fmt.Fprintln(cmd.OutOrStdout(), "\nTech news agent run completed successfully!")
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.Save, "save", true, "write the JSON report to the output directory")
	cmd.Flags().BoolVar(&opts.Print, "print", true, "print the report summary to the console")
	return cmd
}

func scheduleCMD(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline on the configured cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := build(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer application.Close()

			return application.Schedule(cmd.Context(), usecase.RunOptions{Save: true, Print: true})
		},
	}
}

func build(ctx context.Context, cfgPath string) (*app.Application, error) {
	cfg := config.Load(cfgPath)
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(ctx, cfg, logger, os.Stdout)
	if err != nil {
		logger.Error("application setup failed", "error", err)
		return nil, err
	}
	return application, nil
}
