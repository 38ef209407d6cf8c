package commands

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bankfeed-dev/bankfeed/internal/camt"
	"github.com/bankfeed-dev/bankfeed/internal/config"
	"github.com/bankfeed-dev/bankfeed/internal/model"
	"github.com/bankfeed-dev/bankfeed/internal/nordigen"
	"github.com/bankfeed-dev/bankfeed/internal/recon"
	"github.com/bankfeed-dev/bankfeed/internal/storage"
)

func newImportCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a bank statement into the ledger",
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log resolution steps")

	cmd.AddCommand(newImportCamtCommand(&verbose))
	cmd.AddCommand(newImportNordigenCommand(&verbose))

	return cmd
}

func newImportCamtCommand(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "camt <file>",
		Short: "Import an ISO 20022 bank-to-customer account report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newImportEnv(cmd, *verbose)
			if err != nil {
				return err
			}
			defer env.store.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening statement: %w", err)
			}
			defer f.Close()

			report, err := camt.ReadReport(f)
			if err != nil {
				return err
			}
			logReportSummary(env.log, report)

			bank := model.Bank{}
			if report.Account.Servicer != nil {
				bank.Name = report.Account.Servicer.Institution.Name
				bank.Bic = report.Account.Servicer.Institution.Bic
			}

			importer := recon.NewImporter(env.store, &camt.Feed{Location: env.location}, env.log, time.Now)
			result, err := importer.Import(
				cmd.Context(),
				model.UserAccount{Iban: report.Account.ID.Iban, CurrencyCode: report.Account.Currency},
				bank,
				report.Entries,
				env.user,
			)
			if err != nil {
				return err
			}

			printResult(cmd, result)
			return nil
		},
	}
}

func newImportNordigenCommand(verbose *bool) *cobra.Command {
	var iban, currency, bankName, bankBic string

	cmd := &cobra.Command{
		Use:   "nordigen <file>",
		Short: "Import Nordigen booked transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newImportEnv(cmd, *verbose)
			if err != nil {
				return err
			}
			defer env.store.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening statement: %w", err)
			}
			defer f.Close()

			transactions, err := nordigen.ReadTransactions(f)
			if err != nil {
				return err
			}

			importer := recon.NewImporter(env.store, &nordigen.Feed{Location: env.location}, env.log, time.Now)
			result, err := importer.Import(
				cmd.Context(),
				model.UserAccount{Iban: iban, CurrencyCode: currency},
				model.Bank{Name: bankName, Bic: bankBic},
				transactions.Booked,
				env.user,
			)
			if err != nil {
				return err
			}

			printResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&iban, "iban", "", "IBAN of the account the statement reports on (required)")
	_ = cmd.MarkFlagRequired("iban")
	cmd.Flags().StringVar(&currency, "currency", "", "currency of the account (required)")
	_ = cmd.MarkFlagRequired("currency")
	cmd.Flags().StringVar(&bankName, "bank-name", "", "name of the servicing bank")
	cmd.Flags().StringVar(&bankBic, "bank-bic", "", "BIC of the servicing bank")

	return cmd
}

// importEnv is the shared setup of the import subcommands.
type importEnv struct {
	store    *storage.Store
	user     model.User
	location *time.Location
	log      *slog.Logger
}

func newImportEnv(cmd *cobra.Command, verbose bool) (*importEnv, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	store, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	user, err := store.Repositories().Users.FindByName(cmd.Context(), cfg.User)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("user %q: %w (run bankfeed init first)", cfg.User, err)
	}

	return &importEnv{store: store, user: user, location: location, log: log}, nil
}

func logReportSummary(log *slog.Logger, report camt.Report) {
	summary := report.TransactionsSummary
	if summary == nil {
		return
	}
	if credit := summary.TotalCreditEntries; credit != nil {
		log.Debug("report credit entries", "count", credit.NumberOfEntries, "sum", credit.Sum)
	}
	if debit := summary.TotalDebitEntries; debit != nil {
		log.Debug("report debit entries", "count", debit.NumberOfEntries, "sum", debit.Sum)
	}
}

func printResult(cmd *cobra.Command, result recon.Result) {
	out := cmd.OutOrStdout()

	var createdAccounts, createdTransactions, createdTransfers int
	for _, a := range result.Accounts {
		if a.Created {
			createdAccounts++
		}
	}
	for _, t := range result.Transactions {
		if t.Created {
			createdTransactions++
		}
	}
	for _, t := range result.Transfers {
		if t.Created {
			createdTransfers++
		}
	}

	fmt.Fprintf(out, "Accounts:     %d touched, %d created\n", len(result.Accounts), createdAccounts)
	fmt.Fprintf(out, "Transactions: %d touched, %d created\n", len(result.Transactions), createdTransactions)
	fmt.Fprintf(out, "Transfers:    %d touched, %d created\n", len(result.Transfers), createdTransfers)

	for _, a := range result.Accounts {
		if a.Created {
			fmt.Fprintf(out, "  new account: %s (%s)\n", a.Account.Name, a.Account.ID)
		}
	}
}
