package health_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/product-catalog/internal/health"
	"github.com/tuanvumaihuynh/product-catalog/internal/storage/mq"
)

type stubChecker struct {
	name     string
	critical bool
	err      error
}

func (c stubChecker) Name() string                  { return c.name }
func (c stubChecker) Critical() bool                { return c.critical }
func (c stubChecker) Check(context.Context) error   { return c.err }

type stubHealth struct {
	ok  bool
	err error
}

func (h stubHealth) IsHealthy(context.Context) (bool, error) { return h.ok, h.err }

type stubProducer struct{ err error }

func (p stubProducer) Produce(context.Context, mq.ProduceMsg) error { return nil }
func (p stubProducer) Ping(context.Context) error                   { return p.err }

func TestServiceCheck(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name     string
		checkers []health.Checker
		want     health.Status
	}{
		{
			name: "Should be healthy without checkers",
			want: health.StatusHealthy,
		},
		{
			name: "Should be healthy when all pass",
			checkers: []health.Checker{
				stubChecker{name: "a", critical: true},
				stubChecker{name: "b"},
			},
			want: health.StatusHealthy,
		},
		{
			name: "Should be degraded when non-critical fails",
			checkers: []health.Checker{
				stubChecker{name: "a", critical: true},
				stubChecker{name: "b", err: boom},
			},
			want: health.StatusDegraded,
		},
		{
			name: "Should be unhealthy when critical fails",
			checkers: []health.Checker{
				stubChecker{name: "a", critical: true, err: boom},
				stubChecker{name: "b", err: boom},
			},
			want: health.StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := health.NewService(slog.New(slog.DiscardHandler), tt.checkers...)
			report := svc.Check(context.Background())
			assert.Equal(t, tt.want, report.Status)
			assert.Len(t, report.Checks, len(tt.checkers))
		})
	}
}

func TestDependencyCheckers(t *testing.T) {
	ctx := context.Background()

	pg := health.NewPostgresChecker(stubHealth{ok: true})
	assert.Equal(t, "postgres", pg.Name())
	assert.True(t, pg.Critical())
	assert.NoError(t, pg.Check(ctx))
	assert.Error(t, health.NewPostgresChecker(stubHealth{err: errors.New("down")}).Check(ctx))
	assert.Error(t, health.NewPostgresChecker(stubHealth{ok: false}).Check(ctx))

	kafka := health.NewKafkaChecker(stubProducer{})
	assert.Equal(t, "kafka", kafka.Name())
	assert.False(t, kafka.Critical())
	assert.NoError(t, kafka.Check(ctx))
	assert.Error(t, health.NewKafkaChecker(stubProducer{err: errors.New("down")}).Check(ctx))

	report := health.NewService(slog.New(slog.DiscardHandler), pg, health.NewKafkaChecker(stubProducer{err: errors.New("down")})).Check(ctx)
	assert.Equal(t, health.StatusDegraded, report.Status)
	assert.Equal(t, health.StatusDegraded, report.Checks["kafka"].Status)
	assert.Contains(t, report.Checks["kafka"].Error, "down")
}
