package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"bitbucket.org/mmdatafocus/service_sync/config"
	"bitbucket.org/mmdatafocus/service_sync/servicesync"
	"bitbucket.org/mmdatafocus/service_sync/utils"
	"github.com/sirupsen/logrus"
)

type cliOptions struct {
	resolve  bool
	xlsxPath string
}

// parseArgs accepts both `-resolve` and the positional form `sync-services resolve`.
func parseArgs(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("sync-services", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.resolve, "resolve", false, "Write upstream values back for discrepant services")
	fs.StringVar(&opts.xlsxPath, "xlsx", "", "Optional: write the report as an xlsx workbook to this path")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	for _, arg := range fs.Args() {
		switch strings.ToLower(strings.TrimSpace(arg)) {
		case "resolve":
			opts.resolve = true
		default:
			return opts, fmt.Errorf("unknown argument %q", arg)
		}
	}
	return opts, nil
}

func main() {
	os.Exit(run())
}

func run() int {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	config.SetLogLevel(settings.LogLevel)
	logger := config.GetLogger()

	ctx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	if err := config.ConnectDatabase(ctx, 5); err != nil {
		config.LogError(logger, "sync-services", "run", "ConnectDatabase", nil, err)
		fmt.Fprintf(os.Stderr, "database not initialized: %v\n", err)
		return 1
	}
	defer config.CloseDatabase()

	if err := config.ConnectRedis(ctx, settings.RedisAddress); err != nil {
		config.LogError(logger, "sync-services", "run", "ConnectRedis", settings.RedisAddress, err)
		fmt.Fprintf(os.Stderr, "redis not initialized: %v\n", err)
		return 1
	}
	defer config.CloseRedis()

	lock := servicesync.NewRunLock(config.GetRedisLock(), settings.LockTTL)
	if err := lock.Acquire(ctx); err != nil {
		if errors.Is(err, servicesync.ErrRunLocked) {
			fmt.Fprintln(os.Stderr, "Another sync run is in progress")
		} else {
			config.LogError(logger, "sync-services", "run", "lock.Acquire", nil, err)
		}
		return 1
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil {
			config.LogError(logger, "sync-services", "run", "lock.Release", nil, err)
		}
	}()

	source, err := servicesync.NewSourceClient(settings, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	reporters := servicesync.MultiReporter{
		servicesync.NewConsoleReporter(os.Stdout),
		servicesync.NewLogReporter(logger),
	}
	var excel *servicesync.ExcelReporter
	if opts.xlsxPath != "" {
		excel = servicesync.NewExcelReporter()
		reporters = append(reporters, excel)
	}

	reconcilerOpts := []servicesync.Option{servicesync.WithLogger(logger)}
	if settings.PhoneRegion != "" {
		reconcilerOpts = append(reconcilerOpts, servicesync.WithKeyFunc(servicesync.PhoneKey(settings.PhoneRegion)))
	}

	db := config.GetDB()
	reconciler := servicesync.NewReconciler(
		source,
		servicesync.NewTargetStore(db),
		servicesync.NewMappingStore(db),
		reporters,
		reconcilerOpts...,
	)

	result, runErr := reconciler.Run(ctx, servicesync.RunOptions{Resolve: opts.resolve})
	if runErr != nil && !errors.Is(runErr, servicesync.ErrNoSourceRecords) {
		config.LogError(logger, "sync-services", "run", "Run", nil, runErr)
		fmt.Fprintf(os.Stderr, "sync failed: %v\n", runErr)
		return 1
	}

	if excel != nil {
		writeWorkbook(ctx, logger, excel, opts.xlsxPath, settings.ReportBucket, result.RunID)
	}
	if settings.ReportTopic != "" {
		publishSummary(ctx, logger, settings.ReportTopic, result)
	}

	return exitCode(runErr)
}

// exitCode maps the outcome of a run to the process exit status. An empty
// upstream dataset is not a failure.
func exitCode(runErr error) int {
	if runErr == nil || errors.Is(runErr, servicesync.ErrNoSourceRecords) {
		return 0
	}
	return 1
}

func writeWorkbook(ctx context.Context, logger *logrus.Logger, excel *servicesync.ExcelReporter, path, bucket, runID string) {
	if err := excel.SaveAs(path); err != nil {
		config.LogError(logger, "sync-services", "writeWorkbook", "SaveAs", path, err)
		return
	}
	logger.WithFields(logrus.Fields{"path": path}).Info("report written")
	if bucket == "" {
		return
	}
	objectName := fmt.Sprintf("service-sync/%s/%s", runID, filepath.Base(path))
	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if err := utils.UploadFileToGCS(ctx, bucket, objectName, path, contentType); err != nil {
		config.LogError(logger, "sync-services", "writeWorkbook", "UploadFileToGCS", objectName, err)
		return
	}
	logger.WithFields(logrus.Fields{"bucket": bucket, "object": objectName}).Info("report uploaded")
}

func publishSummary(ctx context.Context, logger *logrus.Logger, topic string, result servicesync.Result) {
	client, err := config.GetPubSubClient(ctx)
	if err != nil {
		config.LogError(logger, "sync-services", "publishSummary", "GetPubSubClient", topic, err)
		return
	}
	defer config.ClosePubSub()
	id, err := servicesync.PublishSummary(ctx, client, topic, result)
	if err != nil {
		config.LogError(logger, "sync-services", "publishSummary", "PublishSummary", topic, err)
		return
	}
	logger.WithFields(logrus.Fields{"topic": topic, "message_id": id}).Info("summary published")
}
