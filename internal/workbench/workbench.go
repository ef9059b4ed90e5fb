// Copyright (c) 2025 SQLPilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package workbench wires the session's components together. A Workbench
// owns every piece of mutable session state; nothing is kept in package
// variables.
package workbench

import (
	"go.uber.org/zap"

	"sqlpilot/cli/internal/backend"
	"sqlpilot/cli/internal/config"
	"sqlpilot/cli/internal/events"
	"sqlpilot/cli/internal/httperrors"
	"sqlpilot/cli/internal/mode"
	"sqlpilot/cli/internal/query"
	"sqlpilot/cli/internal/registry"
	"sqlpilot/cli/internal/schema"
	"sqlpilot/cli/internal/selector"
	"sqlpilot/cli/internal/transport"
)

// Workbench is the composition root of a CLI session.
type Workbench struct {
	Transport *transport.Client
	API       backend.API
	Bus       *events.Bus
	Selector  *selector.Selector
	Schemas   *schema.Cache
	Registry  *registry.Registry
	Queries   *query.Dispatcher
	Mode      *mode.Toggle

	logger *zap.Logger
}

type options struct {
	logger     *zap.Logger
	notifier   httperrors.Notifier
	api        backend.API
	transports []transport.Option
}

// Option customizes New.
type Option func(*options)

// WithLogger sets the logger shared by all components.
func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

// WithNotifier sets how transport failures are shown to the user.
func WithNotifier(n httperrors.Notifier) Option { return func(o *options) { o.notifier = n } }

// WithAPI replaces the HTTP backend, e.g. with a fake in tests.
func WithAPI(api backend.API) Option { return func(o *options) { o.api = api } }

// WithTransportOptions passes extra options to the transport client.
func WithTransportOptions(opts ...transport.Option) Option {
	return func(o *options) { o.transports = append(o.transports, opts...) }
}

// New builds a Workbench from configuration.
func New(cfg config.Config, opts ...Option) (*Workbench, error) {
	o := options{logger: zap.NewNop(), notifier: httperrors.Discard}
	for _, opt := range opts {
		opt(&o)
	}
	initial, err := mode.Parse(cfg.Mode)
	if err != nil {
		return nil, err
	}

	tOpts := append([]transport.Option{
		transport.WithTimeout(cfg.Timeout),
		transport.WithLogger(o.logger),
		transport.WithNotifier(o.notifier),
	}, o.transports...)
	t := transport.New(cfg.APIURL, tOpts...)

	api := o.api
	if api == nil {
		api = backend.New(t)
	}

	bus := events.NewBus(o.logger)
	sel := selector.New(bus, o.logger)
	cache := schema.NewCache(api, o.logger)
	bus.Subscribe(events.EventSelectionChanged, cache.HandleSelection)

	wb := &Workbench{
		Transport: t,
		API:       api,
		Bus:       bus,
		Selector:  sel,
		Schemas:   cache,
		Registry:  registry.New(api, sel, o.logger),
		Queries:   query.NewDispatcher(api, sel, o.logger),
		Mode:      mode.NewToggle(initial),
		logger:    o.logger,
	}
	o.logger.Debug("workbench ready", zap.String("api_url", cfg.APIURL), zap.String("mode", initial.String()))
	return wb, nil
}

// Wait blocks until in-flight event handlers (schema refreshes) finish.
func (w *Workbench) Wait() {
	w.Bus.Wait()
}

// Close stops event delivery and waits for running handlers.
func (w *Workbench) Close() {
	w.Bus.Close()
	_ = w.logger.Sync()
}
