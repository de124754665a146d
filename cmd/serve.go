package main

import (
	"fmt"

	"github.com/Adithya-charan/docuExtract/pkg/llm"
	"github.com/Adithya-charan/docuExtract/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var addr string
	var embed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the persistence service backed by Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logger.With("serve")

			if cfg.Server.DatabaseURL == "" {
				return fmt.Errorf("server.database_url (or DATABASE_URL) is required")
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			pg, err := server.NewPostgres(ctx, server.PostgresConfig{
				ConnString: cfg.Server.DatabaseURL,
				VectorDim:  cfg.Server.VectorDim,
			})
			if err != nil {
				return err
			}
			defer pg.Close()

			opts := []server.Option{server.WithLogger(logger)}

			if cfg.Server.RedisURL != "" {
				cache, err := server.NewRedisStatsCache(ctx, cfg.Server.RedisURL, cfg.Server.StatsTTL)
				if err != nil {
					log.Warn().Err(err).Msg("stats cache disabled")
				} else {
					defer cache.Close()
					opts = append(opts, server.WithStatsCache(cache))
				}
			}

			if embed {
				embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
					Model:   cfg.LLM.EmbedModel,
					BaseURL: cfg.LLM.BaseURL,
				})
				if err != nil {
					return err
				}
				opts = append(opts, server.WithEmbedder(embedder))
				log.Info().Str("model", cfg.LLM.EmbedModel).Msg("summary embeddings enabled")
			}

			return server.New(server.Config{Addr: cfg.Server.Addr}, pg, opts...).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&embed, "embed", true, "Embed analysis summaries with the Ollama embedding model")
	return cmd
}
