// The archiver runs the monthly message archival pipeline. By default it
// performs a single run and exits, for invocation from an external
// scheduler (e.g. cron on the first of the month) or by hand. With
// -schedule it stays resident and runs on its own cron schedule instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"

	"archive-service/internal/archive"
	"archive-service/internal/db"
	"archive-service/internal/observability"
	"archive-service/internal/rabbitmq"
	"archive-service/internal/repositories"
	"archive-service/internal/telemetry"
)

const serviceName = "archive-service-archiver"

func main() {
	ensureSchema := flag.Bool("ensure-schema", false, "create the archive table if it does not exist before running")
	schedule := flag.String("schedule", "", "cron expression; when set, run on this schedule instead of once")
	flag.Parse()

	if err := run(*ensureSchema, *schedule); err != nil {
		fmt.Fprintf(os.Stderr, "archiver: %v\n", err)
		os.Exit(1)
	}
}

func run(ensureSchema bool, schedule string) error {
	ctx := context.Background()

	database, err := db.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer database.Close()

	shutdownTracing, err := observability.SetupTracing(ctx, serviceName, getEnv("OTLP_ENDPOINT", ""))
	if err != nil {
		return fmt.Errorf("set up tracing: %w", err)
	}
	defer shutdownTracing(ctx)

	if ensureSchema {
		if err := db.EnsureArchiveSchema(ctx, database); err != nil {
			return err
		}
		log.Println("archive schema ensured")
	}

	publisher := rabbitmq.NewPublisher(getEnv("AMQP_URL", ""), getEnv("AMQP_EXCHANGE", "dashboard.events"))
	defer publisher.Close()

	audit := telemetry.NewAuditEmitter(publisher, "audit.archive", serviceName, getEnv("ENVIRONMENT", "dev"))
	coordinator := archive.NewCoordinator(repositories.NewArchiveRunStore(database), publisher, audit)

	if schedule == "" {
		result, err := coordinator.Run(ctx, time.Now())
		if err != nil {
			return err
		}
		log.Printf("archival run complete: month=%s archived=%d deleted=%d notice_id=%d",
			result.Month, result.ArchivedCount, result.DeletedCount, result.SystemMessageID)
		return nil
	}

	return runScheduled(ctx, coordinator, schedule)
}

// runScheduled keeps the process resident and triggers runs on the given
// cron schedule until SIGINT or SIGTERM. A failed run is logged and the
// schedule continues; state is untouched, so the next slot retries it.
func runScheduled(ctx context.Context, coordinator *archive.Coordinator, schedule string) error {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.CronJob(schedule, false),
		gocron.NewTask(func() {
			result, err := coordinator.Run(ctx, time.Now())
			if err != nil {
				log.Printf("scheduled archival run failed: %v", err)
				return
			}
			log.Printf("scheduled archival run complete: month=%s archived=%d deleted=%d",
				result.Month, result.ArchivedCount, result.DeletedCount)
		}),
	)
	if err != nil {
		return fmt.Errorf("schedule job %q: %w", schedule, err)
	}

	scheduler.Start()
	log.Printf("archiver scheduled: %q", schedule)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	return scheduler.Shutdown()
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
