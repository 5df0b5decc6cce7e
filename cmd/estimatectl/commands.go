package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/diewo77/go-estimates/internal/config"
	"github.com/diewo77/go-estimates/internal/db"
	"github.com/diewo77/go-estimates/internal/estimate"
	"github.com/diewo77/go-estimates/internal/render"
	"github.com/diewo77/go-estimates/internal/sheets"
	"github.com/diewo77/go-estimates/internal/store"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// env is shared by the subcommands; it is filled lazily by connect.
type env struct {
	cfg *config.Config
	log *slog.Logger
	db  *gorm.DB
}

func (e *env) connect() error {
	if e.db != nil {
		return nil
	}
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	e.cfg = cfg
	e.log = cfg.Logger()
	e.db, err = db.ConnectAndMigrate(cfg, e.log)
	return err
}

func (e *env) service() (*estimate.Service, error) {
	company, err := e.cfg.Company()
	if err != nil {
		return nil, err
	}
	return estimate.NewService(e.db, render.NewPDF(), estimate.Options{
		BillsDir: e.cfg.BillsDir,
		Company:  company,
		Logger:   e.log,
	}), nil
}

func rootCmd() *cobra.Command {
	return newRootCmd(&env{})
}

func newRootCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "estimatectl",
		Short:         "Operator tasks for the estimates database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(migrateCmd(e), itemsCmd(e), renderCmd(e), reportCmd(e), nextNumberCmd(e))
	return cmd
}

func migrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema (and the seed when DB_SEED is set)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.connect(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func itemsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{Use: "items", Short: "Item catalog spreadsheets"}
	cmd.AddCommand(&cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Create or update catalog items from a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.connect(); err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			res, err := sheets.ImportItems(cmd.Context(), f, store.NewItemStore(e.db))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added=%d updated=%d skipped=%d\n", res.Added, res.Updated, res.Skipped)
			for _, p := range res.Problems {
				fmt.Fprintln(cmd.ErrOrStderr(), p)
			}
			return nil
		},
	}, &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Write the catalog to a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.connect(); err != nil {
				return err
			}
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := sheets.ExportItems(cmd.Context(), f, store.NewItemStore(e.db)); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	})
	return cmd
}

func renderCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "render <estimate-no>",
		Short: "Regenerate the PDF of a stored estimate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.connect(); err != nil {
				return err
			}
			svc, err := e.service()
			if err != nil {
				return err
			}
			est, err := svc.Estimates.GetByNumber(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("estimate %s: %w", args[0], err)
			}
			path, err := svc.Render(cmd.Context(), est.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func reportCmd(e *env) *cobra.Command {
	var xlsxPath string
	month := &cobra.Command{
		Use:   "month <yyyy-mm>",
		Short: "Print the day-wise totals of a month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := time.Parse("2006-01", args[0])
			if err != nil {
				return fmt.Errorf("month must be yyyy-mm: %w", err)
			}
			if err := e.connect(); err != nil {
				return err
			}
			rep, err := store.NewEstimateStore(e.db).Monthly(cmd.Context(), t.Year(), t.Month())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, d := range rep.Days {
				fmt.Fprintf(out, "%s\t%d\t%s\n", d.Date.Format(render.DateLayout), d.Count, render.Money(d.Total))
			}
			fmt.Fprintf(out, "total\t%d\t%s\n", rep.Count, render.Money(rep.Total))
			if xlsxPath == "" {
				return nil
			}
			f, err := os.Create(xlsxPath)
			if err != nil {
				return err
			}
			if err := sheets.ExportMonthly(f, rep); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
	month.Flags().StringVar(&xlsxPath, "xlsx", "", "Also write the report to this spreadsheet")
	cmd := &cobra.Command{Use: "report", Short: "Estimate reports"}
	cmd.AddCommand(month)
	return cmd
}

func nextNumberCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "next-number",
		Short: "Print the number the next estimate will get",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.connect(); err != nil {
				return err
			}
			no, err := store.NewEstimateStore(e.db).NextNumber(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), no)
			return nil
		},
	}
}
