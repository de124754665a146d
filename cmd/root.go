package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Adithya-charan/docuExtract/pkg/config"
	"github.com/Adithya-charan/docuExtract/pkg/ingest"
	"github.com/Adithya-charan/docuExtract/pkg/llm"
	"github.com/Adithya-charan/docuExtract/pkg/locale"
	"github.com/Adithya-charan/docuExtract/pkg/logging"
	"github.com/Adithya-charan/docuExtract/pkg/pipeline"
	"github.com/Adithya-charan/docuExtract/pkg/store"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	outputJSON bool
	logLevel   string
	localeFlag string

	cfg    *config.Config
	logger *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:           "docuextract",
	Short:         "Turn PDFs and images into a structured outline you can chat with",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if localeFlag != "" {
			if !locale.Supported(localeFlag) {
				return fmt.Errorf("unsupported locale %q (supported: %v)", localeFlag, locale.Codes())
			}
			cfg.UI.Locale = localeFlag
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if errs := cfg.Validate(); len(errs) > 0 {
			joined := make([]error, len(errs))
			for i, e := range errs {
				joined[i] = e
			}
			return fmt.Errorf("invalid configuration: %w", errors.Join(joined...))
		}

		logger = logging.New(logging.Config{
			Level:       cfg.Log.Level,
			Format:      cfg.Log.Format,
			Output:      os.Stderr,
			ServiceName: "docuextract",
		})
		if outputJSON {
			color.NoColor = true
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file path")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&localeFlag, "locale", "", "Output language code")

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newChatCmd(),
		newHistoryCmd(),
		newExportCmd(),
		newLoginCmd(),
		newSignupCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newStatsCmd(),
		newHealthCmd(),
		newServeCmd(),
	)
}

// openStore opens the device store and wraps it with the remote service.
func openStore() (*store.Hybrid, error) {
	if err := os.MkdirAll(cfg.Store.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	local, err := store.OpenLocal(store.LocalConfig{Dir: cfg.Store.DataDir})
	if err != nil {
		return nil, err
	}
	remote := store.NewRemote(store.RemoteConfig{BaseURL: cfg.Store.APIBase, Timeout: cfg.Store.Timeout})
	return store.NewHybrid(remote, local, store.AdminCredentials{
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	}, logger), nil
}

// openApp builds the full application context. The caller closes the
// returned store.
func openApp(ctx context.Context) (*pipeline.App, *store.Hybrid, error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}

	client, err := llm.NewClient(llm.ClientConfig{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
	})
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	machine := pipeline.NewMachine(pipeline.MachineConfig{
		Ingestor: ingest.New(),
		Analyzer: client,
		Store:    st,
		Logger:   logger,
	})

	app, err := pipeline.NewApp(ctx, pipeline.AppConfig{
		Store:    st,
		Machine:  machine,
		Sessions: client,
		Locale:   cfg.UI.Locale,
		Logger:   logger,
	})
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return app, st, nil
}
