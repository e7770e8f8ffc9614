package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fulmenhq/gofulmen/ascii"
	"github.com/spf13/cobra"

	"github.com/unpackhq/unpack/internal/output"
)

var (
	cacheListLimit   int
	cachePurgeAll    bool
	cachePurgeYes    bool
	cachePurgeOutput string
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or purge the simplification cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached simplifications, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := resolveOutputFormat(cmd)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		db, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		entries, err := db.ListSimplifications(cmd.Context(), cacheListLimit)
		if err != nil {
			return err
		}

		rendered, err := output.NewFormatter(format).FormatCache(entries)
		if err != nil {
			return err
		}
		return writeRendered(cmd, rendered)
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete cached simplifications",
	Long: `Delete cached simplifications.

By default only expired entries are removed. Pass --all --yes to empty the cache.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(cachePurgeOutput)
		if err != nil {
			return err
		}
		if format != output.FormatJSON && format != output.FormatTable {
			return fmt.Errorf("unsupported output format: %s", format)
		}

		expiredOnly, _ := cmd.Flags().GetBool("expired")
		if cachePurgeAll {
			expiredOnly = false
		}
		if !expiredOnly && !cachePurgeYes {
			return errors.New("purging every entry requires --yes")
		}

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		db, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		removed, err := db.PurgeSimplifications(cmd.Context(), expiredOnly)
		if err != nil {
			return err
		}

		if format == output.FormatJSON {
			payload, err := json.MarshalIndent(map[string]any{
				"removed":      removed,
				"expired_only": expiredOnly,
			}, "", "  ")
			if err != nil {
				return err
			}
			return writeRendered(cmd, string(payload))
		}

		scope := "all entries"
		if expiredOnly {
			scope = "expired entries"
		}
		lines := []string{"Cache Purge", "", fmt.Sprintf("scope: %s", scope), fmt.Sprintf("removed: %d", removed)}
		return writeRendered(cmd, ascii.DrawBox(strings.Join(lines, "\n"), 0))
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cachePurgeCmd)

	cacheListCmd.Flags().IntVar(&cacheListLimit, "limit", 50, "Maximum entries to show")
	addOutputFlags(cacheListCmd)

	cachePurgeCmd.Flags().Bool("expired", true, "Remove only expired entries")
	cachePurgeCmd.Flags().BoolVar(&cachePurgeAll, "all", false, "Remove every entry")
	cachePurgeCmd.Flags().BoolVar(&cachePurgeYes, "yes", false, "Confirm --all")
	cachePurgeCmd.Flags().StringVar(&cachePurgeOutput, "output-format", string(output.FormatTable), "Output format: table|json")
	cachePurgeCmd.Flags().String("out", "", "Write output to a file (default stdout)")
}
