package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ledgerline/ccimport/internal/accounts"
	"github.com/ledgerline/ccimport/internal/config"
	"github.com/ledgerline/ccimport/internal/gitops"
	"github.com/ledgerline/ccimport/internal/store/csvstore"
	"github.com/ledgerline/ccimport/internal/store/postgres"
)

type initOptions struct {
	importDir string
	driver    string
	dsn       string
	git       bool
	force     bool
}

func newInitCommand() *cobra.Command {
	opts := initOptions{}

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a config file and an empty store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, opts)
		},
	}

	cmd.Flags().StringVar(&opts.importDir, "import-dir", "", "directory scanned for CSV exports (default ~/downloads)")
	cmd.Flags().StringVar(&opts.driver, "driver", config.DriverCSV, "store driver: csv or postgres")
	cmd.Flags().StringVar(&opts.dsn, "dsn", "", "postgres connection string")
	cmd.Flags().BoolVar(&opts.git, "git", false, "track the csv store in git and commit after each import")
	cmd.Flags().BoolVar(&opts.force, "force", false, "overwrite an existing config file")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, opts initOptions) error {
	ctx := cmd.Context()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil && !opts.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	cfg := config.Default()
	cfg.Store.Driver = opts.driver
	cfg.Git.AutoCommit = opts.git
	if opts.importDir != "" {
		cfg.Import.Dir = opts.importDir
	}

	switch opts.driver {
	case config.DriverCSV:
		storeDir := filepath.Join(dir, cfg.Store.Dir)
		if err := csvstore.Init(storeDir, accounts.DefaultAccounts()); err != nil {
			return fmt.Errorf("creating store: %w", err)
		}
		if opts.git && !gitops.IsRepo(storeDir) {
			if err := gitops.Init(ctx, storeDir); err != nil {
				return err
			}
			author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
			if _, err := gitops.Commit(ctx, storeDir, "init: empty store", author); err != nil {
				return fmt.Errorf("initial commit: %w", err)
			}
		}
	case config.DriverPostgres:
		cfg.Store.Dir = ""
		cfg.Store.DSN = opts.dsn
		if cfg.DSN() == "" {
			return fmt.Errorf("--dsn or %s is required for the postgres driver", config.EnvDSN)
		}
		st, err := postgres.Open(ctx, cfg.DSN())
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.EnsureSchema(ctx); err != nil {
			return err
		}
		if err := st.SeedAccounts(ctx, accounts.DefaultAccounts()); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown store driver %q", opts.driver)
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized ccimport at %s (store: %s)\n", dir, opts.driver)
	return nil
}
