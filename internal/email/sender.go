package email

import (
	"context"
	"errors"

	"art-advisor/internal/domain"
)

// Sender avisa a los operadores cuando una corrida de curaduria falla.
type Sender interface {
	SendRunFailure(ctx context.Context, report domain.RunReport) error
}

// ErrDisabled se devuelve cuando no hay SMTP configurado.
var ErrDisabled = errors.New("email sender disabled")

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendRunFailure(_ context.Context, _ domain.RunReport) error {
	if s.reason == "" {
		return ErrDisabled
	}
	return errors.Join(ErrDisabled, errors.New(s.reason))
}
