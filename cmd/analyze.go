package main

import (
	"context"
	"fmt"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/Adithya-charan/docuExtract/pkg/pipeline"
	"github.com/Adithya-charan/docuExtract/pkg/source"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	var exportDir string

	cmd := &cobra.Command{
		Use:   "analyze <file-or-url>",
		Short: "Extract a structured outline from a PDF or image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, st, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			res, err := analyzeLocation(ctx, app, args[0])
			if err != nil {
				return err
			}

			if exportDir != "" {
				path, err := pipeline.WriteExport(exportDir, res)
				if err != nil {
					return err
				}
				if !outputJSON {
					color.Green("Exported to %s", path)
				}
			}

			if outputJSON {
				return printJSON(res)
			}
			printResult(res)
			return nil
		},
	}

	cmd.Flags().StringVar(&exportDir, "export", "", "Also write the result as JSON into this directory")
	return cmd
}

// analyzeLocation loads a document from a path or URL and runs it through
// the pipeline.
func analyzeLocation(ctx context.Context, app *pipeline.App, location string) (*models.AnalysisResult, error) {
	loader := source.NewWithConfig(source.LoaderConfig{
		RateLimit: cfg.Source.RateLimit,
		Timeout:   cfg.Source.Timeout,
	})

	var doc models.Document
	var err error
	if showProgress() {
		spinner := getSpinner("Loading " + location)
		doc, err = loader.Load(ctx, location)
		spinner.Finish()
		fmt.Println()
	} else {
		doc, err = loader.Load(ctx, location)
	}
	if err != nil {
		return nil, err
	}

	done := trackProgress(app.Machine(), doc.Name)
	res, err := app.Analyze(ctx, doc)
	done()
	if err != nil {
		return nil, fmt.Errorf("analysis of %s failed: %w", doc.Name, err)
	}

	if u := app.User(); u == nil && !outputJSON {
		color.Yellow("Not signed in: this result was not saved to history.")
	}
	return res, nil
}
