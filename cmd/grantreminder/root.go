package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/odense-rpa/grant-reminder/internal/config"
	"github.com/odense-rpa/grant-reminder/internal/credentials"
	"github.com/odense-rpa/grant-reminder/internal/db"
	"github.com/odense-rpa/grant-reminder/internal/metrics"
	"github.com/odense-rpa/grant-reminder/internal/nexus"
	"github.com/odense-rpa/grant-reminder/internal/populator"
	"github.com/odense-rpa/grant-reminder/internal/processor"
	"github.com/odense-rpa/grant-reminder/internal/reporting"
	"github.com/odense-rpa/grant-reminder/internal/rules"
	"github.com/odense-rpa/grant-reminder/internal/tracking"
	"github.com/odense-rpa/grant-reminder/internal/workqueue"
)

func newRootCommand() *cobra.Command {
	var excelFile string
	var populateOnly bool

	cmd := &cobra.Command{
		Use:           "grantreminder",
		Short:         processor.ProcessName,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(excelFile, populateOnly)
		},
	}

	cmd.Flags().StringVar(&excelFile, "excel-file", "./Regler.xlsx",
		"Path to the Excel file containing mapping data")
	cmd.Flags().BoolVar(&populateOnly, "queue", false,
		"Clear new items, populate the queue, and exit without processing")

	return cmd
}

func run(excelFile string, populateOnly bool) error {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	if _, err := os.Stat(excelFile); err != nil {
		logger.Fatal("rule spreadsheet not found", zap.String("path", excelFile), zap.Error(err))
	}

	mapping, err := rules.Load(excelFile)
	if err != nil {
		logger.Fatal("failed to load rule mapping", zap.Error(err))
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatal("unknown timezone", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- credentials ----
	// All five must resolve before any queue work begins; the workflow
	// engine credential is validated here even though this process does
	// not call it directly.
	credClient := credentials.NewClient(cfg.ATSURL, cfg.ATSToken, cfg.HTTPTimeout)

	creds := make(map[string]*credentials.Credential)
	for _, name := range []string{
		config.CredentialNexusAPI,
		config.CredentialNexusDB,
		config.CredentialXflow,
		config.CredentialTracking,
		config.CredentialReporting,
	} {
		cred, err := credClient.Get(ctx, name)
		if err != nil {
			logger.Fatal("failed to resolve credential", zap.String("name", name), zap.Error(err))
		}
		creds[name] = cred
	}

	// ---- work queue ----
	queuePool, err := db.Connect(ctx, cfg.WorkqueueDatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal("failed to connect to work queue database", zap.Error(err))
	}
	defer queuePool.Close()

	if err := db.Migrate(cfg.WorkqueueDatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	store := workqueue.NewPgStore(queuePool)

	// ---- populate-and-exit mode ----
	if populateOnly {
		return populate(ctx, cfg, creds, mapping, store, logger)
	}

	return process(ctx, cfg, creds, mapping, store, loc, logger)
}

// populate clears all new items and refills the queue from the reporting
// database, then exits without processing anything.
func populate(
	ctx context.Context,
	cfg *config.Config,
	creds map[string]*credentials.Credential,
	mapping *rules.Mapping,
	store workqueue.Store,
	logger *zap.Logger,
) error {
	reportPool, err := db.Connect(ctx, creds[config.CredentialNexusDB].PostgresURL(), cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal("failed to connect to reporting database", zap.Error(err))
	}
	defer reportPool.Close()

	cleared, err := store.ClearNew(ctx)
	if err != nil {
		logger.Error("failed to clear new items", zap.Error(err))
		return err
	}
	logger.Info("cleared new items", zap.Int64("count", cleared))

	pop := populator.New(mapping, reporting.NewPgClient(reportPool), store, cfg.DaysBack, logger)
	if err := pop.Run(ctx); err != nil {
		logger.Error("populate failed", zap.Error(err))
		return err
	}

	if stats, err := store.Stats(ctx); err == nil {
		logger.Info("queue state",
			zap.Int("new", stats[workqueue.StatusNew]),
			zap.Int("completed", stats[workqueue.StatusCompleted]),
			zap.Int("failed", stats[workqueue.StatusFailed]),
		)
	}
	return nil
}

// process drains the queue, reports the run summary, and pushes run metrics
// when a Pushgateway is configured.
func process(
	ctx context.Context,
	cfg *config.Config,
	creds map[string]*credentials.Credential,
	mapping *rules.Mapping,
	store workqueue.Store,
	loc *time.Location,
	logger *zap.Logger,
) error {
	nexusClient, err := nexus.NewFromCredential(ctx, creds[config.CredentialNexusAPI], cfg.HTTPTimeout, cfg.NexusRateLimit)
	if err != nil {
		logger.Fatal("failed to build case-management client", zap.Error(err))
	}

	trackingPool, err := db.Connect(ctx, creds[config.CredentialTracking].PostgresURL(), cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal("failed to connect to tracking database", zap.Error(err))
	}
	defer trackingPool.Close()

	reporterPool, err := db.Connect(ctx, creds[config.CredentialReporting].PostgresURL(), cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal("failed to connect to reporting sink database", zap.Error(err))
	}
	defer reporterPool.Close()

	m := metrics.New()
	proc := processor.New(
		store,
		nexusClient,
		mapping,
		tracking.NewPgTracker(trackingPool),
		loc,
		logger,
		m.OutcomeHook(),
	)

	summary, err := proc.Run(ctx)
	if err != nil {
		logger.Error("processing aborted", zap.Error(err))
		return err
	}

	reporter := tracking.NewPgReporter(reporterPool)
	if err := reporter.Report(ctx, processor.ProcessName, summary.Created, summary.Skipped, summary.Failed); err != nil {
		logger.Warn("run report failed", zap.Error(err))
	}

	if cfg.PushgatewayURL != "" {
		if err := m.Push(cfg.PushgatewayURL, "grant_reminder"); err != nil {
			logger.Warn("metrics push failed", zap.Error(err))
		}
	}

	return nil
}
