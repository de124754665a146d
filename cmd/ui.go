package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/Adithya-charan/docuExtract/pkg/pipeline"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
)

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func showProgress() bool {
	return cfg.UI.Progress && !outputJSON
}

// trackProgress mirrors pipeline states onto a progress bar. The returned
// func finishes the bar.
func trackProgress(m *pipeline.Machine, name string) func() {
	if !showProgress() {
		return func() {}
	}
	bar := getProgressBar(pipeline.ReadyProgress, "Analyzing "+name)
	m.Subscribe(func(s pipeline.State) {
		if s.Kind == pipeline.Idle || s.Kind == pipeline.Failed {
			return
		}
		if n := len(s.Logs); n > 0 {
			bar.Describe(color.BlueString(s.Logs[n-1]))
		}
		bar.Set(s.Progress)
	})
	return func() {
		bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(r *models.AnalysisResult) {
	bold := color.New(color.Bold).SprintFunc()

	fmt.Printf("%s %s\n", bold("Document:"), r.FileName)
	fmt.Printf("%s %s\n", bold("Summary:"), r.Summary)
	fmt.Printf("%s %d pages, %s, confidence %.2f, quality %d, %d sections\n",
		bold("Metadata:"), r.Metadata.Pages, r.Metadata.Language,
		r.Metadata.Confidence, r.QualityScore, r.CountNodes())
	if r.Metadata.DNASequence != "" {
		fmt.Printf("%s %s\n", bold("DNA:"), r.Metadata.DNASequence)
	}
	fmt.Println()

	printNodes(r.Hierarchy, 0)

	if len(r.Issues) > 0 {
		fmt.Println()
		color.Yellow("Issues:")
		for _, issue := range r.Issues {
			fmt.Printf("  - %s\n", issue)
		}
	}
}

func printNodes(nodes []models.HierarchyNode, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		fmt.Printf("%s%s %s\n", indent, intentColor(n.Intent)(string(n.Intent)), n.Heading)
		if n.NodeSummary != "" {
			fmt.Printf("%s  %s\n", indent, color.HiBlackString(n.NodeSummary))
		}
		printNodes(n.Children, depth+1)
	}
}

func intentColor(i models.Intent) func(a ...interface{}) string {
	switch i {
	case models.IntentWarning, models.IntentLegal:
		return color.New(color.FgRed).SprintFunc()
	case models.IntentProcedure:
		return color.New(color.FgGreen).SprintFunc()
	case models.IntentDefinition, models.IntentConcept:
		return color.New(color.FgCyan).SprintFunc()
	}
	return color.New(color.FgBlue).SprintFunc()
}

func newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	return table
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Format("2006-01-02 15:04")
}
