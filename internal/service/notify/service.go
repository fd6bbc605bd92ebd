// Package notify delivers fleet alerts to operators over WhatsApp and push notifications.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/mamadbah2/motofleet/internal/domain/models"
	"github.com/mamadbah2/motofleet/internal/i18n"
	"github.com/mamadbah2/motofleet/internal/metrics"
	"github.com/mamadbah2/motofleet/pkg/clients/expo"
	"github.com/mamadbah2/motofleet/pkg/clients/whatsapp"
)

const (
	channelWhatsApp = "whatsapp"
	channelPush     = "push"
	defaultQueue    = 64
	deliveryTimeout = 20 * time.Second
)

// ErrNoRecipient is returned when a WhatsApp message has nowhere to go.
var ErrNoRecipient = errors.New("no whatsapp recipient configured")

// DeviceLister returns the registered push tokens.
type DeviceLister interface {
	DeviceTokens(ctx context.Context) ([]string, error)
}

// Options configures the notifier. Nil clients disable their channel.
type Options struct {
	WhatsApp   whatsapp.Client
	Push       expo.Client
	Devices    DeviceLister
	Recipient  string
	Translator *i18n.Translator
	Metrics    *metrics.Metrics
	QueueSize  int
}

// Service queues alerts and delivers them from a background worker.
type Service struct {
	opts    Options
	queue   chan models.Alert
	waCB    *gobreaker.CircuitBreaker
	pushCB  *gobreaker.CircuitBreaker
	logger  *zap.Logger
	tr      *i18n.Translator
	metrics *metrics.Metrics
	done    chan struct{}
}

// NewService builds a notifier.
func NewService(opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueue
	}
	tr := opts.Translator
	if tr == nil {
		tr = i18n.New("pt")
	}

	s := &Service{
		opts:    opts,
		queue:   make(chan models.Alert, opts.QueueSize),
		logger:  logger,
		tr:      tr,
		metrics: opts.Metrics,
		done:    make(chan struct{}),
	}
	s.waCB = s.newBreaker(channelWhatsApp)
	s.pushCB = s.newBreaker(channelPush)
	return s
}

func (s *Service) newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Warn("alert channel breaker changed state",
				zap.String("channel", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// NotifyAlert queues an alert. It never blocks; alerts are dropped when the queue is full.
func (s *Service) NotifyAlert(alert models.Alert) {
	select {
	case s.queue <- alert:
	default:
		s.logger.Warn("alert queue full, dropping alert", zap.String("moto_id", alert.MotoID), zap.String("status", alert.Status))
	}
}

// Run delivers queued alerts until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case alert := <-s.queue:
			deliverCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
			if err := s.Deliver(deliverCtx, alert); err != nil {
				s.logger.Error("alert delivery failed", zap.String("moto_id", alert.MotoID), zap.Error(err))
			}
			cancel()
		}
	}
}

// Done is closed when Run returns.
func (s *Service) Done() <-chan struct{} {
	return s.done
}

// Deliver sends one alert on every configured channel.
func (s *Service) Deliver(ctx context.Context, alert models.Alert) error {
	body := s.tr.T("alert.body", alert.MotoID, alert.Status)
	if alert.Reason != "" {
		body += "\n" + s.tr.T("alert.reason", alert.Reason)
	}

	var errs []error
	if s.opts.WhatsApp != nil && s.opts.Recipient != "" {
		if err := s.SendText(ctx, body); err != nil {
			errs = append(errs, err)
		}
	}

	if s.opts.Push != nil && s.opts.Devices != nil {
		if err := s.push(ctx, alert, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SendText sends a WhatsApp text to the configured recipient.
func (s *Service) SendText(ctx context.Context, body string) error {
	if s.opts.WhatsApp == nil || s.opts.Recipient == "" {
		return ErrNoRecipient
	}

	_, err := s.waCB.Execute(func() (interface{}, error) {
		return s.opts.WhatsApp.SendTextMessage(ctx, whatsapp.SendTextMessageRequest{To: s.opts.Recipient, Body: body})
	})
	s.metrics.AlertDelivered(channelWhatsApp, err)
	if err != nil {
		return fmt.Errorf("whatsapp alert: %w", err)
	}
	return nil
}

func (s *Service) push(ctx context.Context, alert models.Alert, body string) error {
	tokens, err := s.opts.Devices.DeviceTokens(ctx)
	if err != nil {
		return fmt.Errorf("load device tokens: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}

	msg := models.PushMessage{
		To:    tokens,
		Title: s.tr.T("alert.push.title"),
		Body:  body,
		Data:  map[string]any{"screen": "IoT", "moto_id": alert.MotoID, "status": alert.Status},
	}

	_, err = s.pushCB.Execute(func() (interface{}, error) {
		results := s.opts.Push.Send(ctx, msg)
		failed := expo.Failed(results)
		if len(failed) == len(results) {
			return nil, fmt.Errorf("all %d push deliveries failed: %w", len(results), failed[0].Err)
		}
		for _, f := range failed {
			s.logger.Warn("push delivery failed", zap.String("token", f.To), zap.Error(f.Err))
		}
		return nil, nil
	})
	s.metrics.AlertDelivered(channelPush, err)
	if err != nil {
		return fmt.Errorf("push alert: %w", err)
	}
	return nil
}
