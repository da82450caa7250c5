package commands

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ledgerline/ccimport/internal/importer"
)

func newFormatsCommand(global *globalOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "formats [file...]",
		Short: "Show how each export would be read",
		Long: `Prints the header row, the inferred column layout, and the first data
row with its normalized transaction for each file. With no arguments
every file in the import directory is inspected. Nothing is written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd, global)
			if err != nil {
				return err
			}
			resolver, err := cfg.Resolver()
			if err != nil {
				return err
			}

			var files []importer.FileInfo
			if len(args) > 0 {
				for _, a := range args {
					files = append(files, importer.FileInfo{Name: filepath.Base(a), Path: a})
				}
			} else {
				if dir == "" {
					dir = cfg.ImportDir()
				}
				files, err = importer.Scan(dir, cfg.Import.Suffix)
				if err != nil {
					return err
				}
			}

			im := importer.New(resolver, nil, logger)
			out := cmd.OutOrStdout()
			var errs []error
			for _, f := range files {
				sheet, c, err := importer.OpenSheet(f)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				insp, err := im.Inspect(sheet)
				c.Close()
				printInspection(out, sheet.Name, insp)
				if err != nil {
					fmt.Fprintf(out, "  error:   %v\n", err)
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "import directory (overrides config)")
	return cmd
}
