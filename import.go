package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"

	"blogport/app/export"
	"blogport/app/importer"
	"blogport/app/repositories"

	"github.com/spf13/cobra"
)

func newImportCmd(g *globalFlags) *cobra.Command {
	var (
		collection string
		rewriteMap string
		format     string
		siteURL    string
		timezone   string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "import <export-file>",
		Short: "Import a blog export into the content store",
		Long: `Import reads a YAML or JSON export ("-" for stdin), replaces the
collection's previous import with it and writes the rewrite map.

With --dry-run the export is imported into an empty in-memory store and
nothing on disk is touched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := make(map[string]interface{})
			flags := map[string]string{
				"collection":  "import.collection",
				"rewrite-map": "import.rewrite_map",
				"site-url":    "import.site_url",
				"timezone":    "import.timezone",
			}
			values := map[string]string{
				"collection":  collection,
				"rewrite-map": rewriteMap,
				"site-url":    siteURL,
				"timezone":    timezone,
			}
			for flag, key := range flags {
				if cmd.Flags().Changed(flag) {
					overrides[key] = values[flag]
				}
			}

			cfg, err := g.load(overrides)
			if err != nil {
				return err
			}
			loc, err := cfg.Import.Location()
			if err != nil {
				return err
			}

			var exportFormat export.Format
			if format != "" {
				if exportFormat, err = export.ParseFormat(format); err != nil {
					return err
				}
			}
			records, err := export.Load(args[0], exportFormat, cmd.InOrStdin())
			if err != nil {
				return err
			}

			var store *repositories.Store
			if dryRun {
				store, err = repositories.Open("", repositories.Options{InMemory: true})
			} else {
				store, err = repositories.Open(cfg.Store.Path, repositories.Options{OpenTimeout: cfg.Store.OpenTimeout})
			}
			if err != nil {
				return err
			}
			defer store.Close()

			im := importer.New(store.Accounts, store.Posts, store.Comments, importer.Options{
				SiteURL:            cfg.Import.SiteURL,
				Location:           loc,
				SyndicationMarker:  cfg.Import.SyndicationMarker,
				KeepSyndicated:     cfg.Import.KeepSyndicated,
				MaxAccountAttempts: cfg.Import.MaxAccountAttempts,
				PasswordCost:       cfg.Import.PasswordCost,
				Logger:             log.New(cmd.ErrOrStderr(), "", log.LstdFlags),
			})

			var table bytes.Buffer
			result, err := im.Import(cfg.Import.Collection, records, &table)
			if err != nil {
				return err
			}

			if !dryRun && cfg.Import.RewriteMap != "" {
				if err := os.WriteFile(cfg.Import.RewriteMap, table.Bytes(), 0644); err != nil {
					return fmt.Errorf("failed to write rewrite map: %w", err)
				}
			}

			printResult(cmd.OutOrStdout(), cfg.Import.Collection, result, dryRun)
			if !dryRun && cfg.Import.RewriteMap != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Rewrite map written to %s\n", cfg.Import.RewriteMap)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&collection, "collection", "", "collection to import into (overrides import.collection)")
	cmd.Flags().StringVar(&rewriteMap, "rewrite-map", "", "file to write the rewrite map to (overrides import.rewrite_map)")
	cmd.Flags().StringVar(&format, "format", "", "export format: yaml or json (default: guessed from the file name)")
	cmd.Flags().StringVar(&siteURL, "site-url", "", "base URL of the new site (overrides import.site_url)")
	cmd.Flags().StringVar(&timezone, "timezone", "", "timezone of export timestamps (overrides import.timezone)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "import into an empty in-memory store and write nothing")
	return cmd
}

func printResult(w io.Writer, collection string, r *importer.Result, dryRun bool) {
	if dryRun {
		fmt.Fprintln(w, "Dry run: nothing was written")
	}
	fmt.Fprintf(w, "Collection %q\n", collection)
	fmt.Fprintf(w, "  Posts:    %d created, %d updated, %d deleted\n", r.PostsCreated, r.PostsUpdated, r.PostsDeleted)
	fmt.Fprintf(w, "  Comments: %d created, %d updated, %d deleted, %d skipped\n", r.CommentsCreated, r.CommentsUpdated, r.CommentsDeleted, r.CommentsSkipped)
	fmt.Fprintf(w, "  Accounts: %d created, %d stamped\n", r.AccountsCreated, r.AccountsStamped)
	fmt.Fprintf(w, "  Rewrites: %d entries, %d skipped, links rewritten in %d posts and %d comments\n", r.RewriteEntries, r.RewriteSkipped, r.PostsRewritten, r.CommentsRewritten)
}
