package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/warden/pkg/cli"
	"mercator-hq/warden/pkg/tier"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and validate the tier catalog",
}

var catalogLintCmd = &cobra.Command{
	Use:   "lint [path]",
	Short: "Validate a tier catalog",
	Long: `Load a tier catalog and report consistency issues: overlapping ranges,
score gaps between tiers, and minimum_steps exceeding the required steps.

Structural errors (unreadable file, missing ranges, duplicate names) always
fail. Consistency issues fail only with --strict.

Examples:
  # Lint the configured catalog
  warden catalog lint

  # Lint another file, failing on any issue
  warden catalog lint tiers.yaml --strict

  # JSON output for CI
  warden catalog lint --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCatalogLint,
}

var catalogShowCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "List the tiers of a catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCatalogShow,
}

var catalogFlags struct {
	strict bool
	format string
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogLintCmd)
	catalogCmd.AddCommand(catalogShowCmd)

	catalogCmd.PersistentFlags().StringVar(&catalogFlags.format, "format", "text", "output format: text, json, csv")
	catalogLintCmd.Flags().BoolVar(&catalogFlags.strict, "strict", false, "treat consistency issues as errors")
}

func loadCatalog(args []string) (*tier.Catalog, error) {
	if len(args) > 0 {
		return tier.LoadFile(args[0])
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return tier.LoadFile(cfg.Catalog.Path)
}

func runCatalogLint(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(catalogFlags.format)
	if err != nil {
		return err
	}
	c, err := loadCatalog(args)
	if err != nil {
		return err
	}

	issues := c.Validate()
	if format == cli.FormatText && len(issues) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d tiers, no issues\n", c.Source(), c.Len())
	} else if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), issueTable(issues)); err != nil {
		return err
	}

	if catalogFlags.strict && len(issues) > 0 {
		return fmt.Errorf("%d catalog issues found", len(issues))
	}
	return nil
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(catalogFlags.format)
	if err != nil {
		return err
	}
	c, err := loadCatalog(args)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), tierTable(c.Tiers()))
}

type issueTable []tier.Issue

func (t issueTable) Headers() []string {
	return []string{"KIND", "TIER", "OTHER", "MESSAGE"}
}

func (t issueTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, issue := range t {
		rows = append(rows, []string{string(issue.Kind), issue.Tier, issue.Other, issue.Message})
	}
	return rows
}

type tierTable []tier.Definition

func (t tierTable) Headers() []string {
	return []string{"NAME", "RANGE", "DIRECT", "MINIMUM", "REQUIRED_STEPS"}
}

func (t tierTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, def := range t {
		rows = append(rows, []string{
			def.Name,
			def.Range.String(),
			strconv.FormatBool(def.AllowDirectActions),
			strconv.Itoa(def.MinimumSteps),
			strings.Join(def.RequiredSteps, ","),
		})
	}
	return rows
}
