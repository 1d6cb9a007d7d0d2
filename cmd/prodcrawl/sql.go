package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/storefront-tools/prodcrawl/internal/artifact"
	"github.com/storefront-tools/prodcrawl/internal/config"
	"github.com/storefront-tools/prodcrawl/internal/sqlgen"
)

var (
	sqlInput     string
	sqlOutput    string
	sqlOutputDir string
	sqlTable     string
)

// sqlCmd creates the "sql" subcommand.
func sqlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sql",
		Short: "Convert crawled-products.json to a seed SQL script",
		Long: `Read a crawled-products.json artifact and write seed-products.sql:
one multi-row INSERT statement for the products table, value-escaped.`,
		RunE: runSQL,
	}

	cmd.Flags().StringVarP(&sqlInput, "input", "i", "", "path to crawled-products.json")
	cmd.Flags().StringVarP(&sqlOutput, "output", "o", "", "path to seed-products.sql")
	cmd.Flags().StringVar(&sqlOutputDir, "output-dir", "", "directory holding both input and output")
	cmd.Flags().StringVar(&sqlTable, "table", "", "target table name")

	return cmd
}

// runSQL executes the sql command.
func runSQL(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := setupLogger(&cfg.Logging)

	dir := cfg.Crawl.OutputDir
	if sqlOutputDir != "" {
		dir = sqlOutputDir
	}
	input := filepath.Join(dir, artifact.ProductsFile)
	output := filepath.Join(dir, artifact.SQLFile)
	if sqlInput != "" {
		input = sqlInput
	}
	if sqlOutput != "" {
		output = sqlOutput
	}
	table := cfg.SQL.Table
	if sqlTable != "" {
		table = sqlTable
	}

	products, err := artifact.ReadProducts(input)
	if err != nil {
		return err
	}

	script, err := sqlgen.Render(products, table)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(output, []byte(script), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	logger.Info("SQL written", "path", output, "rows", len(products))
	fmt.Printf("Wrote %d rows to %s\n", len(products), output)
	return nil
}
