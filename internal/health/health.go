package health

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tuanvumaihuynh/product-catalog/internal/storage/db"
	"github.com/tuanvumaihuynh/product-catalog/internal/storage/mq"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

const defaultTimeout = 3 * time.Second

// Checker probes one dependency. A failing critical checker makes the whole
// service unhealthy; a failing non-critical one only degrades it.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
	Critical() bool
}

type CheckResult struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

type Service struct {
	logger   *slog.Logger
	checkers []Checker
	timeout  time.Duration
}

func NewService(logger *slog.Logger, checkers ...Checker) *Service {
	return &Service{
		logger:   logger.With(slog.String("service", "health")),
		checkers: checkers,
		timeout:  defaultTimeout,
	}
}

// Check runs every checker concurrently, each bounded by the service timeout.
func (s *Service) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	errs := make([]error, len(s.checkers))
	var wg sync.WaitGroup
	for i, c := range s.checkers {
		wg.Go(func() {
			errs[i] = c.Check(ctx)
		})
	}
	wg.Wait()

	report := Report{Status: StatusHealthy, Checks: make(map[string]CheckResult, len(s.checkers))}
	for i, c := range s.checkers {
		err := errs[i]
		if err == nil {
			report.Checks[c.Name()] = CheckResult{Status: StatusHealthy}
			continue
		}

		s.logger.WarnContext(ctx, "health check failed",
			slog.String("check", c.Name()),
			slog.Bool("critical", c.Critical()),
			slog.Any("error", err),
		)

		if c.Critical() {
			report.Checks[c.Name()] = CheckResult{Status: StatusUnhealthy, Error: err.Error()}
			report.Status = StatusUnhealthy
			continue
		}

		report.Checks[c.Name()] = CheckResult{Status: StatusDegraded, Error: err.Error()}
		if report.Status == StatusHealthy {
			report.Status = StatusDegraded
		}
	}

	return report
}

type postgresChecker struct {
	hc db.HealthChecker
}

// NewPostgresChecker reports the database as a critical dependency.
func NewPostgresChecker(hc db.HealthChecker) Checker {
	return postgresChecker{hc: hc}
}

func (postgresChecker) Name() string   { return "postgres" }
func (postgresChecker) Critical() bool { return true }

func (c postgresChecker) Check(ctx context.Context) error {
	ok, err := c.hc.IsHealthy(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("database reported unhealthy")
	}
	return nil
}

type kafkaChecker struct {
	producer mq.Producer
}

// NewKafkaChecker reports the event channel as non-critical: writes still
// succeed while it is down.
func NewKafkaChecker(producer mq.Producer) Checker {
	return kafkaChecker{producer: producer}
}

func (kafkaChecker) Name() string   { return "kafka" }
func (kafkaChecker) Critical() bool { return false }

func (c kafkaChecker) Check(ctx context.Context) error {
	if err := c.producer.Ping(ctx); err != nil {
		return fmt.Errorf("ping kafka: %w", err)
	}
	return nil
}
