// Package scheduler lanza corridas de curaduria: a pedido o una vez por dia.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"art-advisor/internal/domain"
	"art-advisor/internal/email"
)

// CurationRunner ejecuta una corrida completa y devuelve su reporte.
type CurationRunner interface {
	Run(ctx context.Context, trigger string) (domain.RunReport, error)
}

// Submitter es la unica puerta de entrada para pedir una corrida.
type Submitter interface {
	Submit(trigger string)
}

// Runner ejecuta cada corrida en su propia goroutine, sin bloquear a quien la pide.
// No serializa corridas: dos pedidos simultaneos producen dos lotes.
type Runner struct {
	pipeline CurationRunner
	alerts   email.Sender
	timeout  time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

func NewRunner(pipeline CurationRunner, alerts email.Sender, timeout time.Duration, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if alerts == nil {
		alerts = email.NewDisabledSender("")
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Runner{
		pipeline: pipeline,
		alerts:   alerts,
		timeout:  timeout,
		logger:   logger,
	}
}

// Submit devuelve de inmediato; el resultado queda en los logs y, si falla, en la alerta por correo.
func (r *Runner) Submit(trigger string) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.logger.Warn("curation run rejected: runner closed", zap.String("trigger", trigger))
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		r.execute(trigger)
	}()
}

func (r *Runner) execute(trigger string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("curation run panicked", zap.String("trigger", trigger), zap.Any("panic", rec))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	report, err := r.pipeline.Run(ctx, trigger)
	if err == nil {
		return
	}
	r.notify(report)
}

func (r *Runner) notify(report domain.RunReport) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := r.alerts.SendRunFailure(ctx, report); err != nil {
		if errors.Is(err, email.ErrDisabled) {
			r.logger.Debug("run failure alert skipped", zap.Error(err))
			return
		}
		r.logger.Warn("run failure alert not sent", zap.String("run_id", report.RunID), zap.Error(err))
	}
}

// Shutdown deja de aceptar pedidos y espera las corridas en curso hasta que ctx expire.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
