package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"PhrasebankScanner/internal/app"
	"PhrasebankScanner/internal/config"
	"PhrasebankScanner/internal/domain"
	"PhrasebankScanner/internal/logging"
)

type cli struct {
	configPath string
	logLevel   string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:           "phrasebank",
		Short:         "Extract academic phrases from the Manchester Academic Phrasebank",
		Long:          "Scrapes the phrasebank section pages, classifies every phrase and serves the result.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.load()
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.configPath, "config", "", "path to the YAML config (defaults to $PHRASEBANK_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	rootCmd.AddCommand(c.scrapeCmd())
	rootCmd.AddCommand(c.serveCmd())
	rootCmd.AddCommand(c.searchCmd())

	return rootCmd
}

func (c *cli) load() {
	if c.configPath != "" {
		c.cfg = config.LoadFile(c.configPath)
	} else {
		c.cfg = config.Load()
	}
	if c.logLevel != "" {
		c.cfg.Logging.Level = c.logLevel
	}
	c.logger = logging.New(c.cfg.Logging.Level, c.cfg.Logging.Format)
	slog.SetDefault(c.logger)
}

func (c *cli) withApp(ctx context.Context, fn func(*app.Application) error) error {
	application, err := app.New(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := application.Close(); closeErr != nil {
			c.logger.Warn("close application", "error", closeErr)
		}
	}()
	return fn(application)
}

func (c *cli) scrapeCmd() *cobra.Command {
	var (
		output string
		noDB   bool
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Rebuild the phrase dataset from the configured sections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "" {
				c.cfg.Output.JSONPath = output
			}
			if noDB {
				c.cfg.Database.DSN = ""
			}

			return c.withApp(cmd.Context(), func(application *app.Application) error {
				corpus, err := application.Scrape(cmd.Context())
				if err != nil {
					return err
				}
				printSummary(cmd, corpus)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the JSON export here (overrides output.jsonPath)")
	cmd.Flags().BoolVar(&noDB, "no-db", false, "skip the SQL store and only write the JSON export")
	return cmd
}

func (c *cli) serveCmd() *cobra.Command {
	var (
		addr        string
		scrapeFirst bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lookup API and rebuild on the configured schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.Server.Addr = addr
			}
			return c.withApp(cmd.Context(), func(application *app.Application) error {
				return application.Serve(cmd.Context(), scrapeFirst)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&scrapeFirst, "scrape-first", false, "rebuild the dataset before listening")
	return cmd
}

func (c *cli) searchCmd() *cobra.Command {
	var (
		opts     domain.SearchOptions
		frequent bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search stored phrases",
		Long: `Finds stored phrases containing the query, best academic score first.
With --frequent the query is a section name and its high-frequency phrases are listed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(application *app.Application) error {
				var (
					records []domain.PhraseRecord
					err     error
				)
				if frequent {
					records, err = application.Lookup().HighFrequency(cmd.Context(), args[0], opts.Limit)
				} else {
					records, err = application.Lookup().Search(cmd.Context(), args[0], opts)
				}
				if err != nil {
					return fmt.Errorf("search failed: %w", err)
				}

				if asJSON {
					data, err := json.MarshalIndent(records, "", "  ")
					if err != nil {
						return fmt.Errorf("failed to marshal results: %w", err)
					}
					fmt.Fprintln(cmd.OutOrStdout(), string(data))
					return nil
				}
				printRecords(cmd, records)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.Section, "section", "", "restrict to one section")
	cmd.Flags().Float64Var(&opts.MinScore, "min-score", 0, "minimum academic score")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "maximum number of results")
	cmd.Flags().BoolVar(&frequent, "frequent", false, "list very_high and high frequency phrases of a section")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output results as JSON")
	return cmd
}

func printSummary(cmd *cobra.Command, corpus *domain.Corpus) {
	for _, name := range corpus.SectionNames() {
		result := corpus.Sections[name]
		fmt.Fprintf(cmd.OutOrStdout(), "%-14s %4d phrases in %d subsections\n", name, result.Count(), len(result.Subsections))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "total: %d phrases (run %s)\n", corpus.TotalPhrases(), corpus.Metadata.RunID)
}

func printRecords(cmd *cobra.Command, records []domain.PhraseRecord) {
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No results found.")
		return
	}
	for i, rec := range records {
		fmt.Fprintf(cmd.OutOrStdout(), "  [%d] %s (%.1f, %s)\n", i+1, rec.Text, rec.AcademicScore, rec.Frequency)
		fmt.Fprintf(cmd.OutOrStdout(), "      %s / %s\n", rec.Section, rec.Subsection)
	}
}
