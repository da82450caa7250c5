package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ledgerline/ccimport/internal/config"
	"github.com/ledgerline/ccimport/internal/gitops"
	"github.com/ledgerline/ccimport/internal/importer"
	"github.com/ledgerline/ccimport/internal/runlog"
	"github.com/ledgerline/ccimport/internal/staging"
	"github.com/ledgerline/ccimport/internal/store"
)

// ErrDeclined is returned when the user answers no at the commit prompt.
var ErrDeclined = errors.New("import declined, nothing committed")

type importOptions struct {
	dir    string
	yes    bool
	dryRun bool
}

func newImportCommand(global *globalOptions) *cobra.Command {
	opts := importOptions{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import new transactions from CSV exports",
		Long: `Reads every CSV export in the import directory, normalizes the rows,
drops transactions the store already holds and, after confirmation,
commits the rest in one step.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd, global)
			if err != nil {
				return err
			}
			return runImport(cmd, cfg, logger, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "import directory (overrides config)")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "commit without asking")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "show what would be imported and stop")

	return cmd
}

func runImport(cmd *cobra.Command, cfg *config.Config, logger *log.Logger, opts importOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	resolver, err := cfg.Resolver()
	if err != nil {
		return err
	}

	dir := opts.dir
	if dir == "" {
		dir = cfg.ImportDir()
	}
	files, err := importer.Scan(dir, cfg.Import.Suffix)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(out, "No %s files in %s\n", cfg.Import.Suffix, dir)
		return nil
	}

	sheets, closeAll, err := openSheets(files)
	if err != nil {
		return err
	}
	defer closeAll()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	im := importer.New(resolver, nil, logger)
	batch, err := staging.New(im, st, logger).Stage(ctx, sheets)
	if err != nil {
		return err
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	record := func(action string, committed int) {
		path := cfg.RunLogPath()
		if path == "" {
			return
		}
		entry := runlog.NewEntry(action, names, len(batch.Records), committed)
		if err := runlog.Append(path, []runlog.Entry{entry}); err != nil {
			logger.Warn("run log not written", "path", path, "err", err)
		}
	}

	if len(batch.Records) == 0 {
		fmt.Fprintf(out, "Nothing new to import (%d duplicate(s) skipped)\n", batch.Duplicates)
		if opts.dryRun {
			record(runlog.ActionDryRun, 0)
			return nil
		}
		record(runlog.ActionEmpty, 0)
		closeAll()
		return markProcessed(cfg, logger, dir, names)
	}

	printBatch(out, batch)

	if opts.dryRun {
		record(runlog.ActionDryRun, 0)
		return nil
	}

	if !opts.yes {
		ok, err := confirm(cmd.InOrStdin(), out, fmt.Sprintf("Commit %d transaction(s)?", len(batch.Records)))
		if err != nil {
			return err
		}
		if !ok {
			record(runlog.ActionDeclined, 0)
			return ErrDeclined
		}
	}

	if err := st.Commit(ctx, batch.Records); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	logger.Info("committed", "transactions", len(batch.Records))
	fmt.Fprintf(out, "Committed %d transaction(s)\n", len(batch.Records))
	record(runlog.ActionCommitted, len(batch.Records))

	closeAll()
	if err := markProcessed(cfg, logger, dir, names); err != nil {
		return err
	}

	if cfg.Store.Driver == config.DriverCSV && cfg.Git.AutoCommit && gitops.IsRepo(cfg.StoreDir()) {
		author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
		msg := fmt.Sprintf("import: %d transaction(s) from %d file(s)", len(batch.Records), len(names))
		hash, err := gitops.Commit(ctx, cfg.StoreDir(), msg, author)
		if err != nil {
			return fmt.Errorf("committing store to git: %w", err)
		}
		logger.Debug("git commit", "hash", hash)
	}
	return nil
}

// openSheets opens every file. The returned func closes them all and is
// safe to call more than once.
func openSheets(files []importer.FileInfo) ([]importer.Sheet, func(), error) {
	var (
		sheets  []importer.Sheet
		closers []io.Closer
	)
	closeAll := func() {
		for _, c := range closers {
			c.Close()
		}
		closers = nil
	}
	for _, f := range files {
		sheet, c, err := importer.OpenSheet(f)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		sheets = append(sheets, sheet)
		closers = append(closers, c)
	}
	return sheets, closeAll, nil
}

func markProcessed(cfg *config.Config, logger *log.Logger, dir string, names []string) error {
	if !cfg.Import.MoveProcessed {
		return nil
	}
	for _, name := range names {
		if err := importer.MarkProcessed(dir, name); err != nil {
			return err
		}
		logger.Debug("moved to processed", "file", name)
	}
	return nil
}
