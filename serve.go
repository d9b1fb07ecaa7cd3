package main

import (
	"log"
	"net"

	"blogport/app/importer"
	"blogport/app/repositories"
	"blogport/app/routes"
	"blogport/service"

	"github.com/spf13/cobra"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve imported content read-only for preview",
		Long: `Serve exposes the store as JSON under /api, serves posts at their
canonical /p/<id36>/<slug>/ URLs and redirects old permalink paths to them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := make(map[string]interface{})
			if cmd.Flags().Changed("addr") {
				overrides["server.addr"] = addr
			}
			cfg, err := g.load(overrides)
			if err != nil {
				return err
			}

			store, err := repositories.Open(cfg.Store.Path, repositories.Options{OpenTimeout: cfg.Store.OpenTimeout})
			if err != nil {
				return err
			}
			defer store.Close()

			imported, err := store.Posts.ListImported()
			if err != nil {
				return err
			}
			rewrites := importer.BuildRewriteMap(imported, cfg.Import.SiteURL, log.Default())
			log.Printf("Loaded %d old permalinks", rewrites.Len())

			router := routes.SetupRoutes(store.Posts, store.Comments, rewrites, cfg.Import.SiteURL)

			ln, err := net.Listen("tcp", cfg.Server.Addr)
			if err != nil {
				return err
			}
			return service.Serve(cmd.Context(), ln, router)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
