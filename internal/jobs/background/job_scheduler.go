package background

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"estatehub/internal/config"

	"github.com/go-co-op/gocron/v2"
)

// LeaseExpirer ends leases whose term has passed.
type LeaseExpirer interface {
	EndExpiredLeases(ctx context.Context, now time.Time) (int64, error)
}

// RentScheduler creates and ages rent installments.
type RentScheduler interface {
	GenerateDue(ctx context.Context, now time.Time) (int, error)
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

// CredentialCleaner removes QR images of expired credentials.
type CredentialCleaner interface {
	CleanupExpiredCredentials(ctx context.Context) (int, error)
}

const jobTimeout = 5 * time.Minute

// JobScheduler runs the periodic tenancy jobs. Every job runs in singleton mode.
type JobScheduler struct {
	scheduler   gocron.Scheduler
	leases      LeaseExpirer
	rent        RentScheduler
	credentials CredentialCleaner
	cfg         config.JobsConfig
	now         func() time.Time
	jobs        map[string]gocron.Job
	mu          sync.RWMutex
}

func NewJobScheduler(cfg config.JobsConfig, leases LeaseExpirer, rent RentScheduler, credentials CredentialCleaner) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler:   scheduler,
		leases:      leases,
		rent:        rent,
		credentials: credentials,
		cfg:         cfg,
		now:         time.Now,
		jobs:        make(map[string]gocron.Job),
	}
	if err := js.registerJobs(); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) Start() {
	log.Printf("SCHEDULER: starting %d background jobs", len(js.jobs))
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Printf("SCHEDULER: stopping background jobs")
	return js.scheduler.Shutdown()
}

// JobNames lists the registered jobs.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()
	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	return names
}

func (js *JobScheduler) registerJobs() error {
	specs := []struct {
		name     string
		interval time.Duration
		run      func(context.Context) error
	}{
		{"lease-expiry", js.cfg.LeaseExpiryInterval.Duration, js.endExpiredLeases},
		{"rent-installments", js.cfg.PaymentInterval.Duration, js.processRent},
		{"credential-cleanup", js.cfg.CredentialCleanupEvery.Duration, js.cleanupCredentials},
	}

	js.mu.Lock()
	defer js.mu.Unlock()
	for _, spec := range specs {
		if spec.interval <= 0 {
			return fmt.Errorf("job %s: interval must be positive", spec.name)
		}
		run := spec.run
		name := spec.name
		job, err := js.scheduler.NewJob(
			gocron.DurationJob(spec.interval),
			gocron.NewTask(func() { js.runJob(name, run) }),
			gocron.WithName(name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("failed to create %s job: %w", name, err)
		}
		js.jobs[name] = job
	}
	return nil
}

func (js *JobScheduler) runJob(name string, run func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	if err := run(ctx); err != nil {
		log.Printf("SCHEDULER: %s failed after %s: %v", name, time.Since(start).Round(time.Millisecond), err)
		return
	}
	log.Printf("SCHEDULER: %s finished in %s", name, time.Since(start).Round(time.Millisecond))
}

func (js *JobScheduler) endExpiredLeases(ctx context.Context) error {
	ended, err := js.leases.EndExpiredLeases(ctx, js.now())
	if err != nil {
		return err
	}
	if ended > 0 {
		log.Printf("SCHEDULER: ended %d expired leases", ended)
	}
	return nil
}

// processRent generates this month's installments before aging unpaid ones.
func (js *JobScheduler) processRent(ctx context.Context) error {
	now := js.now()
	created, err := js.rent.GenerateDue(ctx, now)
	if err != nil {
		return fmt.Errorf("generate installments: %w", err)
	}
	overdue, err := js.rent.MarkOverdue(ctx, now)
	if err != nil {
		return fmt.Errorf("mark overdue: %w", err)
	}
	if created > 0 || overdue > 0 {
		log.Printf("SCHEDULER: created %d installments, marked %d overdue", created, overdue)
	}
	return nil
}

func (js *JobScheduler) cleanupCredentials(ctx context.Context) error {
	removed, err := js.credentials.CleanupExpiredCredentials(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		log.Printf("SCHEDULER: removed %d expired credential images", removed)
	}
	return nil
}
