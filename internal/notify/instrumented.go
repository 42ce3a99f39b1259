// Package notify holds the notification drivers and their instrumentation.
package notify

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dtroode/authcore/internal/metrics"
	"github.com/dtroode/authcore/internal/model"
)

var _ model.Dispatcher = (*Instrumented)(nil)

// Instrumented counts the results of a wrapped dispatcher.
type Instrumented struct {
	next    model.Dispatcher
	success prometheus.Counter
	failure prometheus.Counter
}

// NewInstrumented wraps next, labelling its results with driver.
func NewInstrumented(next model.Dispatcher, driver string, m *metrics.Metrics) *Instrumented {
	return &Instrumented{
		next:    next,
		success: m.NotificationsTotal.WithLabelValues(driver, metrics.OutcomeSuccess),
		failure: m.NotificationsTotal.WithLabelValues(driver, metrics.OutcomeError),
	}
}

func (i *Instrumented) Send(ctx context.Context, notification model.Notification) error {
	if err := i.next.Send(ctx, notification); err != nil {
		i.failure.Inc()
		return err
	}
	i.success.Inc()
	return nil
}
