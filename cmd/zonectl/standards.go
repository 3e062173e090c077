package main

import (
	"zonecheck/internal/model"
	"zonecheck/internal/standards"

	"github.com/spf13/cobra"
)

type standardsRow struct {
	Code        string                     `json:"code"`
	Known       bool                       `json:"known"`
	Description string                     `json:"description"`
	Standards   model.DevelopmentStandards `json:"standards"`
}

func newStandardsCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "standards [code...]",
		Short: "Print development standards for zone codes (all codes when none given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := standards.Load(file)
			if err != nil {
				return err
			}

			codes := args
			if len(codes) == 0 {
				codes = table.Codes()
			}
			rows := make([]standardsRow, 0, len(codes))
			for _, code := range codes {
				rows = append(rows, standardsRow{
					Code:        code,
					Known:       table.Has(code),
					Description: table.Describe(code),
					Standards:   table.StandardsFor(code),
				})
			}
			return writeJSON(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().StringVar(&file, "standards-file", "", "YAML table layered over the built-in standards")
	return cmd
}
