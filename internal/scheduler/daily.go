package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"art-advisor/internal/domain"
)

// Daily pide una corrida por dia a la hora configurada. Implementa suture.Service.
type Daily struct {
	runner Submitter
	hour   int
	minute int
	loc    *time.Location
	now    func() time.Time
	after  func(time.Duration) <-chan time.Time
	logger *zap.Logger
}

func NewDaily(runner Submitter, hour, minute int, loc *time.Location, logger *zap.Logger) *Daily {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Daily{
		runner: runner,
		hour:   hour,
		minute: minute,
		loc:    loc,
		now:    time.Now,
		after:  time.After,
		logger: logger,
	}
}

func (d *Daily) Serve(ctx context.Context) error {
	for {
		now := d.now()
		next := NextRun(now, d.hour, d.minute, d.loc)
		d.logger.Info("next scheduled curation", zap.Time("at", next))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.after(next.Sub(now)):
			d.runner.Submit(domain.TriggerSchedule)
		}
	}
}

func (d *Daily) String() string {
	return fmt.Sprintf("daily-curation@%02d:%02d", d.hour, d.minute)
}

// NextRun devuelve el proximo instante HH:MM en loc estrictamente posterior a now.
func NextRun(now time.Time, hour, minute int, loc *time.Location) time.Time {
	local := now.In(loc)
	y, m, day := local.Date()
	next := time.Date(y, m, day, hour, minute, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(y, m, day+1, hour, minute, 0, 0, loc)
	}
	return next
}
