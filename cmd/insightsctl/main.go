package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/receipts-insights/internal/dashboard"
	"github.com/joseph-ayodele/receipts-insights/internal/dataset"
	"github.com/joseph-ayodele/receipts-insights/internal/export"
	repo "github.com/joseph-ayodele/receipts-insights/internal/repository"
	"github.com/joseph-ayodele/receipts-insights/internal/snapshot"
	"github.com/joseph-ayodele/receipts-insights/internal/utils"
)

var (
	dbPath  string
	baseURL string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "insightsctl",
	Short: "Explore retail datasets and manage published share links",
	Long: `insightsctl works directly against the share store named by --db (a SQLite
path or a postgres:// URL).

Examples:
  # Publish a redacted March view of a dataset
  insightsctl publish --data sales.csv --config share.yaml

  # Inspect the numbers behind a selection
  insightsctl view --data sales.xlsx --product Milk --month 2024-03 --question 1

  # Manage shares
  insightsctl list
  insightsctl export 0b7c... --out ./exports`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", envOr("DB_URL", "insights.db"), "Share store (SQLite path or postgres:// URL)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", envOr("SHARE_BASE_URL", "http://localhost:3000"), "Base URL for share links")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress to stderr")

	rootCmd.AddCommand(publishCmd(), viewCmd(), getCmd(), listCmd(), deleteCmd(), exportCmd(), purgeCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// app holds the store-backed services one command needs.
type app struct {
	logger    *slog.Logger
	db        *repo.DB
	service   *dashboard.Service
	publisher *dashboard.Publisher
	snapshots repo.SnapshotRepository
}

func openApp(ctx context.Context) (*app, error) {
	logger := newLogger()
	db, err := repo.Open(ctx, repo.Config{
		DSN:             dbPath,
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
		DialTimeout:     3 * time.Second,
	}, logger)
	if err != nil {
		return nil, err
	}
	if err := repo.Migrate(ctx, db, logger); err != nil {
		repo.Close(db, logger)
		return nil, err
	}
	service := dashboard.NewService(snapshot.NewBuilder(snapshot.WithLogger(logger)), logger)
	snapshots := repo.NewSnapshotRepository(db, baseURL, logger)
	return &app{
		logger:    logger,
		db:        db,
		service:   service,
		publisher: dashboard.NewPublisher(service, snapshots, logger),
		snapshots: snapshots,
	}, nil
}

func (a *app) Close() {
	repo.Close(a.db, a.logger)
}

func loadDataset(ctx context.Context, path string, logger *slog.Logger) (*dataset.Dataset, error) {
	if path == "" {
		return nil, fmt.Errorf("--data is required")
	}
	return dataset.NewStore(logger).LoadFile(ctx, path)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func publishCmd() *cobra.Command {
	var dataPath, configPath string
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Build a snapshot from a dataset and publish it as a share link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			ds, err := loadDataset(ctx, dataPath, a.logger)
			if err != nil {
				return err
			}
			file, err := readShareFile(configPath)
			if err != nil {
				return err
			}
			cfg, err := file.toShareConfig(time.Now())
			if err != nil {
				return err
			}
			pub, err := a.publisher.Publish(ctx, ds, cfg)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"shareId":  pub.ID,
				"url":      pub.URL,
				"metadata": pub.Snapshot.Metadata,
			})
		},
	}
	cmd.Flags().StringVar(&dataPath, "data", "", "CSV or XLSX dataset (required)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML share config")
	return cmd
}

func viewCmd() *cobra.Command {
	var (
		dataPath, month, start, end string
		products, retailers         []string
		question                    int
		responses                   []string
		compare                     bool
	)
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Print the metrics, breakdowns and demographics of a selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()
			ds, err := loadDataset(cmd.Context(), dataPath, logger)
			if err != nil {
				return err
			}

			actions := []dashboard.Action{}
			for _, p := range products {
				actions = append(actions, dashboard.ToggleProduct(p))
			}
			for _, r := range retailers {
				actions = append(actions, dashboard.ToggleRetailer(r))
			}
			switch {
			case month != "":
				actions = append(actions, dashboard.SetMonth(month))
			case start != "" || end != "":
				from, err := optionalDay(start)
				if err != nil {
					return fmt.Errorf("--start: %w", err)
				}
				to, err := optionalDay(end)
				if err != nil {
					return fmt.Errorf("--end: %w", err)
				}
				actions = append(actions, dashboard.SetCustomRange(from, to))
			}
			if question > 0 {
				actions = append(actions, dashboard.SelectQuestion(question))
				for _, r := range responses {
					actions = append(actions, dashboard.ToggleResponse(r))
				}
			}
			st := dashboard.NewStore(dashboard.InitialState()).Dispatch(actions...)

			service := dashboard.NewService(snapshot.NewBuilder(snapshot.WithLogger(logger)), logger)
			view := service.StateView(ds, st)
			out := map[string]any{
				"filters": view.Filters,
				"records": len(view.Records),
				"view":    view.Computed,
				"options": view.Options,
			}
			if compare {
				if cmp, ok := service.ComputeComparison(ds, st.Filters, st.Comparison); ok {
					out["comparison"] = cmp
				}
			}
			if demo, ok := service.StateDemographics(ds, st); ok {
				out["demographics"] = demo
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&dataPath, "data", "", "CSV or XLSX dataset (required)")
	cmd.Flags().StringSliceVar(&products, "product", nil, "Limit to product (repeatable)")
	cmd.Flags().StringSliceVar(&retailers, "retailer", nil, "Limit to retailer chain (repeatable)")
	cmd.Flags().StringVar(&month, "month", "", "Calendar month YYYY-MM")
	cmd.Flags().StringVar(&start, "start", "", "Custom range start YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "Custom range end YYYY-MM-DD")
	cmd.Flags().IntVar(&question, "question", 0, "Survey question number to analyse")
	cmd.Flags().StringSliceVar(&responses, "response", nil, "Cross-tabulate these responses (repeatable)")
	cmd.Flags().BoolVar(&compare, "compare", false, "Include the preceding-period comparison")
	return cmd
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <share-id>",
		Short: "Print a published snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			snap, err := a.publisher.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), snap)
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List live share links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			list, err := a.publisher.List(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, m := range list {
				expires := "never"
				if m.ExpiresAt != nil {
					expires = m.ExpiresAt.Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d records\texpires %s\n",
					m.ID, utils.FormatYMD(m.CreatedAt), m.ClientName, m.DatasetSize, expires)
			}
			return nil
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <share-id>",
		Short: "Revoke a share link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.publisher.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "export <share-id>",
		Short: "Write a share's client view to an XLSX workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			path, err := export.NewService(a.snapshots, a.logger).ExportToDir(cmd.Context(), args[0], outDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory")
	return cmd
}

func purgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete expired share links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			n, err := a.publisher.PurgeExpired(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired shares\n", n)
			return nil
		},
	}
}
