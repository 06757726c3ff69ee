package cmd

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/lmoreira/jobmatch/internal/collector"
	"github.com/lmoreira/jobmatch/internal/logger"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Fetch job postings from the configured providers and dump them as JSON",
	Run: func(cmd *cobra.Command, _ []string) {
		collect(cmd)
	},
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().StringP("output", "o", "", "write the postings to a file instead of stdout")
}

// collect fetches raw postings and writes them out in the format the rank
// command accepts via --jobs.
func collect(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	providers, err := buildProviders(config, logger)
	if err != nil {
		logger.Fatal("configuring providers", zap.Error(err))
	}

	records, err := collector.New(logger, providers...).Collect(ctx, config.Search.Query, config.Search.Location, config.Search.Pages)
	if err != nil {
		logger.Fatal("collecting job postings", zap.Error(err))
	}

	if len(records) == 0 {
		logger.Info("exiting", zap.String("reason", "no jobs collected"))
		return
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		logger.Fatal("encoding postings", zap.Error(err))
	}

	output := cmd.Flag("output").Value.String()
	if output == "" {
		os.Stdout.Write(append(data, '\n'))
		return
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		logger.Fatal("writing postings file", zap.Error(err))
	}

	logger.Info("wrote postings",
		zap.String("output", output),
		zap.Int("count", len(records)),
	)
}
