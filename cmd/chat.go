package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/Adithya-charan/docuExtract/pkg/locale"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <file-or-url>",
		Short: "Analyze a document, then ask questions about it",
		Long: `Analyze a document, then start an interactive conversation grounded in it.

Type /lang <code> to switch the reply language, or exit to quit.`,
		Args: cobra.ExactArgs(1),
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
			printResult(res)

			userPrompt := color.New(color.FgGreen).PrintfFunc()

			fmt.Printf("\nAsk about %s (%s). Type /lang <code> to switch language, 'exit' to quit.\n",
				res.FileName, locale.Name(app.Locale()))

			scanner := bufio.NewScanner(os.Stdin)
			for {
				userPrompt("\nYou: ")
				if !scanner.Scan() {
					break
				}

				input := strings.TrimSpace(scanner.Text())
				if input == "" {
					continue
				}
				if strings.EqualFold(input, "exit") {
					break
				}

				if code, ok := strings.CutPrefix(input, "/lang"); ok {
					code = strings.TrimSpace(code)
					if err := app.SetLocale(code); err != nil {
						color.Red("%v (supported: %s)", err, strings.Join(locale.Codes(), ", "))
						continue
					}
					color.Yellow("Replies will now be in %s.", locale.Name(code))
					continue
				}

				spinner := getSpinner("Thinking...")
				reply, err := app.Chat(ctx, input)
				spinner.Finish()
				fmt.Println()
				if err != nil {
					logger.Warn().Err(err).Msg("chat request failed")
				}
				fmt.Println(replyLine(reply, err))
			}
			return scanner.Err()
		},
	}
}

// replyLine formats an answer. A failed request shows the fallback reply
// when there is one and the error otherwise.
func replyLine(reply string, err error) string {
	switch {
	case err == nil:
		return color.CyanString("Assistant: %s", reply)
	case reply == "":
		return color.RedString("Error: %v", err)
	}
	return color.RedString("Assistant: %s", reply)
}
