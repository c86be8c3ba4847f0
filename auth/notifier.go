package auth

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Notifier delivers account lifecycle messages carrying a short-lived token.
// Mail transport and templating live outside this service; the shipped
// implementation only logs.
type Notifier interface {
	VerificationRequested(ctx context.Context, email, name, registrationToken string) error
	RecoveryRequested(ctx context.Context, email, name, recoveryToken string) error
}

type LogNotifier struct{}

var _ Notifier = LogNotifier{}

func NewLogNotifier() LogNotifier {
	return LogNotifier{}
}

func (LogNotifier) VerificationRequested(_ context.Context, email, name, _ string) error {
	log.Info().Str("email", email).Str("name", name).Msg("verification email requested")
	return nil
}

func (LogNotifier) RecoveryRequested(_ context.Context, email, name, _ string) error {
	log.Info().Str("email", email).Str("name", name).Msg("recovery email requested")
	return nil
}
