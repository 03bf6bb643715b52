package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

type Component interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runtime starts components in registration order and stops them in
// reverse.
type Runtime struct {
	components []Component
	logger     *log.Entry
}

func NewRuntime(components ...Component) *Runtime {
	r := &Runtime{logger: log.WithField("context", "lifecycle")}
	for _, c := range components {
		r.Register(c)
	}
	return r
}

func (r *Runtime) Register(component Component) {
	if component == nil {
		return
	}
	r.components = append(r.components, component)
}

func (r *Runtime) Start(ctx context.Context) error {
	started := make([]Component, 0, len(r.components))
	for _, component := range r.components {
		r.logger.Debugf("starting %T", component)
		if err := component.Start(ctx); err != nil {
			_ = r.stopComponents(ctx, started)
			return fmt.Errorf("start %T: %w", component, err)
		}
		started = append(started, component)
	}
	return nil
}

func (r *Runtime) Stop(ctx context.Context) error {
	return r.stopComponents(ctx, r.components)
}

// Run starts every component, blocks until ctx ends or until is closed, and
// then stops everything within stopTimeout.
func (r *Runtime) Run(ctx context.Context, until <-chan struct{}, stopTimeout time.Duration) error {
	if err := r.Start(ctx); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
	case <-until:
	}
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
	defer cancel()
	return r.Stop(stopCtx)
}

func (r *Runtime) stopComponents(ctx context.Context, components []Component) error {
	var stopErr error
	for i := len(components) - 1; i >= 0; i-- {
		component := components[i]
		r.logger.Debugf("stopping %T", component)
		if err := component.Stop(ctx); err != nil {
			stopErr = errors.Join(stopErr, fmt.Errorf("stop %T: %w", component, err))
		}
	}
	return stopErr
}
