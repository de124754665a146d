package main

import (
	"fmt"
	"strconv"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/Adithya-charan/docuExtract/pkg/pipeline"
	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List recent analyses",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, st, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			history := app.History()
			if outputJSON {
				return printJSON(history)
			}
			if len(history) == 0 {
				fmt.Println("No analyses yet.")
				return nil
			}

			table := newTable("ID", "FILE", "WHEN", "PAGES", "TYPE", "QUALITY", "SECTIONS")
			for _, r := range history {
				table.Append([]string{
					r.ID,
					r.FileName,
					formatMillis(r.Timestamp),
					strconv.Itoa(r.Metadata.Pages),
					string(r.Metadata.FileType),
					strconv.Itoa(r.QualityScore),
					strconv.Itoa(r.CountNodes()),
				})
			}
			table.Render()
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a past analysis to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, st, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			res, ok := lo.Find(app.History(), func(r models.AnalysisResult) bool {
				return r.ID == args[0]
			})
			if !ok {
				return fmt.Errorf("no analysis with id %s in history", args[0])
			}

			path, err := pipeline.WriteExport(dir, &res)
			if err != nil {
				return err
			}
			if outputJSON {
				return printJSON(map[string]string{"path": path})
			}
			color.Green("Exported to %s", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Output directory")
	return cmd
}
