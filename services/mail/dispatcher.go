package mail

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/tech-arch1tect/iam/config"
	"github.com/tech-arch1tect/iam/services/logging"
	"go.uber.org/zap"
)

var ErrQueueFull = errors.New("mail queue is full")

// TemplateSender is the delivery side the dispatcher drives; *Service
// satisfies it.
type TemplateSender interface {
	SendTemplate(templateName string, to []string, subject string, data map[string]any) error
}

type command struct {
	template string
	to       string
	subject  string
	data     map[string]any
}

// Dispatcher decouples account emails from the request path: activation
// mail is queued and delivered by a background worker, reset mail is sent
// inline because its delivery result decides the HTTP response.
type Dispatcher struct {
	sender TemplateSender
	cfg    *config.Config
	logger *logging.Service
	queue  chan command
	wg     sync.WaitGroup

	startOnce sync.Once
	stopOnce  sync.Once
}

func NewDispatcher(sender TemplateSender, cfg *config.Config, logger *logging.Service) *Dispatcher {
	size := cfg.Mail.QueueSize
	if size <= 0 {
		size = 64
	}

	return &Dispatcher{
		sender: sender,
		cfg:    cfg,
		logger: logger,
		queue:  make(chan command, size),
	}
}

// Start launches the delivery worker. Safe to call once.
func (d *Dispatcher) Start() {
	d.startOnce.Do(func() {
		d.wg.Add(1)
		go d.worker()

		if d.logger != nil {
			d.logger.Info("mail dispatcher started", zap.Int("queue_size", cap(d.queue)))
		}
	})
}

// Stop closes the queue and waits for queued mail to drain, bounded by ctx.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.stopOnce.Do(func() {
		close(d.queue)
	})

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("mail dispatcher did not drain: %w", ctx.Err())
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for cmd := range d.queue {
		if err := d.sender.SendTemplate(cmd.template, []string{cmd.to}, cmd.subject, cmd.data); err != nil {
			if d.logger != nil {
				d.logger.Error("queued email delivery failed",
					zap.Error(err),
					zap.String("template", cmd.template),
					zap.String("to", cmd.to))
			}
		}
	}
}

// SendActivation queues the account activation email.
func (d *Dispatcher) SendActivation(email, token string) error {
	activationURL := d.frontendURL(url.Values{
		"action": {"activate"},
		"token":  {token},
	})

	cmd := command{
		template: "activation",
		to:       email,
		subject:  "Activate your account",
		data: map[string]any{
			"AppName":       d.cfg.App.Name,
			"Email":         email,
			"ActivationURL": activationURL,
		},
	}

	select {
	case d.queue <- cmd:
		return nil
	default:
		return ErrQueueFull
	}
}

// SendReset delivers the password reset email synchronously so the caller
// can surface delivery failure.
func (d *Dispatcher) SendReset(email, uidb64, token string) error {
	resetURL := d.frontendURL(url.Values{
		"action": {"reset"},
		"uidb64": {uidb64},
		"token":  {token},
	})

	return d.sender.SendTemplate("password_reset", []string{email}, "Reset your password", map[string]any{
		"AppName":  d.cfg.App.Name,
		"Email":    email,
		"ResetURL": resetURL,
	})
}

func (d *Dispatcher) frontendURL(params url.Values) string {
	return fmt.Sprintf("%s/login?%s", d.cfg.App.FrontendURL, params.Encode())
}
