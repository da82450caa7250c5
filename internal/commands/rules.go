package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ledgerline/ccimport/internal/accounts"
)

func newRulesCommand(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the account rules in match order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(cmd, global)
			if err != nil {
				return err
			}
			resolver, err := cfg.Resolver()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tpattern\taccount")
			for i, r := range resolver.Rules() {
				account := r.Account
				if r.Excludes() {
					account = "(not tracked)"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, r.Pattern, account)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(newRulesTestCommand(global))
	return cmd
}

func newRulesTestCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "test <token>...",
		Short: "Resolve file names or account names against the rules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd, global)
			if err != nil {
				return err
			}
			resolver, err := cfg.Resolver()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var errs []error
			for _, token := range args {
				account, err := resolver.Resolve(token)
				var unclassified *accounts.UnclassifiedAccountError
				switch {
				case errors.As(err, &unclassified):
					fmt.Fprintf(out, "%s\t(unclassified)\n", token)
					errs = append(errs, err)
				case err != nil:
					return err
				case account == accounts.NotTracked:
					fmt.Fprintf(out, "%s\t(not tracked)\n", token)
				default:
					fmt.Fprintf(out, "%s\t%s\n", token, account)
				}
			}
			return errors.Join(errs...)
		},
	}
}
