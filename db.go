package main

import (
	"blogport/app/repositories"
	"blogport/service"

	"github.com/spf13/cobra"
)

func newDBCmd(g *globalFlags) *cobra.Command {
	var yes bool

	admin := func(cmd *cobra.Command) (*service.Admin, error) {
		cfg, err := g.load(nil)
		if err != nil {
			return nil, err
		}
		return &service.Admin{
			Path:    cfg.Store.Path,
			Options: repositories.Options{OpenTimeout: cfg.Store.OpenTimeout},
			In:      cmd.InOrStdin(),
			Out:     cmd.OutOrStdout(),
			Yes:     yes,
		}, nil
	}

	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the content store",
	}
	cmd.PersistentFlags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	var backupDir string
	backup := &cobra.Command{
		Use:   "backup",
		Short: "Create a backup of the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := admin(cmd)
			if err != nil {
				return err
			}
			_, err = a.Backup(backupDir)
			return err
		},
	}
	backup.Flags().StringVar(&backupDir, "dir", "data/backups", "directory to write the backup to")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Initialize a new empty store",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := admin(cmd)
				if err != nil {
					return err
				}
				return a.Init()
			},
		},
		&cobra.Command{
			Use:   "clean",
			Short: "Delete the store",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := admin(cmd)
				if err != nil {
					return err
				}
				return a.Clean()
			},
		},
		backup,
		&cobra.Command{
			Use:   "restore <backup-file>",
			Short: "Replace the store with a backup",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := admin(cmd)
				if err != nil {
					return err
				}
				return a.Restore(args[0])
			},
		},
	)
	return cmd
}
