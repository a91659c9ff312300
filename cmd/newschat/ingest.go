package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newschat-ai/newschat/config"
	srv "github.com/newschat-ai/newschat/internal/server"
	"github.com/newschat-ai/newschat/internal/session/inmemory"
)

func ingestCMD() *cobra.Command {
	var cfgPath string
	var limit int
	var ingest = &cobra.Command{
		Use:   "ingest",
		Short: "Fetch the feed, chunk articles and upsert embeddings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)

			pipeline, err := srv.BuildPipeline(cfg, inmemory.NewStore())
			if err != nil {
				return err
			}
			chunks, err := pipeline.Ingest(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Printf("ingested %d chunks\n", len(chunks))
			return nil
		},
	}
	ingest.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")
	ingest.Flags().IntVar(&limit, "limit", 0, "max feed entries to ingest (0 = default)")

	return ingest
}
