package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/gfxtab/gfxtab-api/internal/server/contact"
	"github.com/gfxtab/gfxtab-api/internal/server/email"
	"github.com/gfxtab/gfxtab-api/internal/server/events"
	"github.com/gfxtab/gfxtab-api/internal/server/status"
)

// EventPublisher is the lifecycle-aware publisher owned by Services
type EventPublisher interface {
	status.Publisher
	Close() error
}

// Services holds the process-wide clients. It is created once at startup and
// shared by every request handler.
type Services struct {
	Status  *status.StatusService
	Contact *contact.Dispatcher
	Events  EventPublisher
}

func NewServices(ctx context.Context, config *Config) (*Services, error) {
	sender, err := email.NewSender(&config.Email)
	if err != nil {
		return nil, fmt.Errorf("create email sender: %w", err)
	}

	store, err := status.OpenStore(ctx, &config.Store)
	if err != nil {
		return nil, fmt.Errorf("open status store: %w", err)
	}

	cache, err := status.OpenCache(ctx, &config.Cache)
	if err != nil {
		_ = store.Close(ctx)
		return nil, fmt.Errorf("open status cache: %w", err)
	}

	var publisher EventPublisher = events.Noop{}
	if config.Events.Enabled {
		publisher = events.NewAMQPPublisher(&config.Events)
	}

	return &Services{
		Status: status.NewStatusService(store,
			status.WithCache(cache),
			status.WithPublisher(publisher),
		),
		Contact: contact.NewDispatcher(sender, &config.Email),
		Events:  publisher,
	}, nil
}

func (s *Services) Start(ctx context.Context) error {
	if err := s.Status.Start(ctx); err != nil {
		return fmt.Errorf("start status service: %w", err)
	}
	return nil
}

// Shutdown closes the publisher first so no event outlives its store write,
// then the status service which releases the store connection.
func (s *Services) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.Events.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close event publisher: %w", err))
	}
	if err := s.Status.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop status service: %w", err))
	}
	return errors.Join(errs...)
}
