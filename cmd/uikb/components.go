package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"uikb/internal/catalog"
)

var componentsCategory string

var componentsCmd = &cobra.Command{
	Use:   "components [name]",
	Short: "Print the component catalog as JSON",
	Long: `Scan the components directory and print the extracted records as JSON,
exactly as MCP clients receive them. With a name, print only that component.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runComponents,
}

func init() {
	componentsCmd.Flags().StringVar(&componentsCategory, "category", catalog.CategoryAll,
		fmt.Sprintf("Filter by category: %v", catalog.Categories))
	rootCmd.AddCommand(componentsCmd)
}

func runComponents(cmd *cobra.Command, args []string) error {
	if !catalog.ValidCategory(componentsCategory) {
		return fmt.Errorf("invalid category %q: must be one of %v", componentsCategory, catalog.Categories)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(stderr, cfg)
	cat := newCatalog(cfg, logger)

	var out interface{}
	if len(args) == 1 {
		rec, ok, err := cat.ByName(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("component %q not found", args[0])
		}
		out = rec
	} else {
		records, err := cat.Filter(cmd.Context(), componentsCategory)
		if err != nil {
			return err
		}
		out = records
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
