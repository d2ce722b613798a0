package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Subjects publicados por el servicio.
const (
	SubjectBookingCreated = "cleanease.booking.created"
	SubjectRatingAdded    = "cleanease.rating.added"
	SubjectPasswordReset  = "cleanease.password.reset"
)

// Publisher emite eventos de dominio. Un fallo no debe abortar la operación que lo origina.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

type natsConn interface {
	PublishMsg(m *nats.Msg) error
}

// NATSPublisher serializa el payload como JSON y lo publica en NATS.
type NATSPublisher struct {
	conn   natsConn
	nc     *nats.Conn
	logger *zap.Logger
}

func NewNATSPublisher(url string, logger *zap.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("cleanease api"),
		nats.Timeout(5*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return &NATSPublisher{conn: nc, nc: nc, logger: logger}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", subject, err)
	}
	msg := nats.NewMsg(subject)
	msg.Data = data
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	p.logger.Debug("event published", zap.String("subject", subject), zap.Int("bytes", len(data)))
	return nil
}

// Close drena la conexión antes de cerrarla.
func (p *NATSPublisher) Close() {
	if p.nc == nil || p.nc.IsClosed() {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.logger.Warn("nats drain failed", zap.Error(err))
		p.nc.Close()
	}
}
