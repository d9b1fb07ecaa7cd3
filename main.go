package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"blogport/app/config"

	"github.com/spf13/cobra"
)

const cliVersion = "1.0.0"

// exit is swapped out by tests.
var exit = os.Exit

func main() {
	RealMain()
}

// RealMain runs the command line and exits non-zero on failure.
func RealMain() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}
}

func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configFile string
	storePath  string
}

// load reads the configuration, applying the global flags and overrides.
func (g *globalFlags) load(overrides map[string]interface{}) (*config.Config, error) {
	if overrides == nil {
		overrides = make(map[string]interface{})
	}
	if g.storePath != "" {
		overrides["store.path"] = g.storePath
	}
	return config.Load(g.configFile, overrides)
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "blogport",
		Short: "Import blog exports into a Badger content store",
		Long: `blogport imports a blog export (posts with nested comments) into a
content store, matching authors to accounts and posts to earlier imports so
that repeated imports converge. It writes a rewrite map from old permalinks
to canonical URLs and can serve the imported content for preview.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&g.configFile, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&g.storePath, "store", "", "Badger store directory (overrides store.path)")

	root.AddCommand(
		newImportCmd(g),
		newServeCmd(g),
		newDBCmd(g),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("blogport version %s\n", cliVersion)
		},
	}
}
