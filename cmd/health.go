package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check whether the persistence service is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			available := st.IsAPIAvailable(cmd.Context())
			if outputJSON {
				return printJSON(map[string]interface{}{"api": cfg.Store.APIBase, "available": available})
			}
			if available {
				color.Green("%s is reachable", cfg.Store.APIBase)
			} else {
				color.Yellow("%s is unreachable; using the on-device store", cfg.Store.APIBase)
			}
			fmt.Printf("data dir: %s\n", cfg.Store.DataDir)
			return nil
		},
	}
}
