package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cannon-dev/cannon/internal/errors"
)

func explainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain [code]",
		Short: "Describe an error code",
		Long: `Describe the error codes cannon reports.

Without an argument every code is listed with its message.

Examples:
  cannon explain
  cannon explain E100`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				for _, code := range errors.GetAllCodes() {
					tmpl, _ := errors.GetTemplate(code)
					fmt.Fprintf(out, "  %s  %-11s %s\n", code, tmpl.Category, tmpl.Message)
				}
				return nil
			}

			code := strings.ToUpper(args[0])
			tmpl, ok := errors.GetTemplate(code)
			if !ok {
				return errors.New("E161").
					WithDetail("unknown error code " + args[0]).
					WithExample("cannon explain E100")
			}

			fmt.Fprintf(out, "%s: %s\n\n", code, tmpl.Message)
			fmt.Fprintf(out, "  Category: %s\n", tmpl.Category)
			fmt.Fprintf(out, "  %s\n", tmpl.Detail)
			if tmpl.DocURL != "" {
				fmt.Fprintf(out, "\n  Learn more: %s\n", tmpl.DocURL)
			}
			return nil
		},
	}

	return cmd
}
