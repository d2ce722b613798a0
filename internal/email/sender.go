package email

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrDisabled indica que el servicio arrancó sin SMTP y no puede entregar códigos.
var ErrDisabled = errors.New("otp mail delivery disabled")

// Sender entrega el código de restablecimiento de contraseña al correo de la cuenta.
// expiresAt se muestra al usuario; el código ya está guardado cuando se llama.
type Sender interface {
	SendVerificationOTP(ctx context.Context, toEmail string, code string, expiresAt time.Time) error
}

// unconfiguredSender falla en cada envío, de modo que /registermail responde 500.
type unconfiguredSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return unconfiguredSender{reason: reason}
}

func (s unconfiguredSender) SendVerificationOTP(ctx context.Context, toEmail string, _ string, _ time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.reason == "" {
		return fmt.Errorf("%w: otp for %s not sent", ErrDisabled, toEmail)
	}
	return fmt.Errorf("%w: %s", ErrDisabled, s.reason)
}
