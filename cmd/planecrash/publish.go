package main

import (
	"github.com/spf13/cobra"

	kafkaadapter "github.com/couchcryptid/planecrash-geodata/internal/adapter/kafka"
	"github.com/couchcryptid/planecrash-geodata/internal/domain"
	"github.com/couchcryptid/planecrash-geodata/internal/pipeline"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish cleaned accidents to Kafka",
	Long:  "Reads data.csv, cleans it and writes one message per accident to KAFKA_TOPIC, keyed by accident id.",
	RunE:  runPublish,
}

func init() {
	publishCmd.Flags().Int("batch-size", 100, "messages per write")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, _ []string) error {
	if err := cfg.RequireKafka(); err != nil {
		return err
	}
	raws, err := dataStore().ReadDatabase()
	if err != nil {
		return err
	}
	accidents := domain.CleanAll(raws, logger)

	writer := kafkaadapter.NewWriter(cfg, logger)
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}()

	batchSize, _ := cmd.Flags().GetInt("batch-size")
	_, err = pipeline.NewPublisher(writer, logger, metrics, batchSize).Publish(cmd.Context(), accidents)
	return err
}
