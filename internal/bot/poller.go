package bot

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/job-helper/internal/logger"
	"github.com/spigell/job-helper/internal/utils"
)

const (
	DefaultWorkers    = 8
	defaultRetryDelay = time.Second
	maxRetryDelay     = time.Minute
)

// Source long-polls for new messages starting at offset.
type Source interface {
	Updates(ctx context.Context, offset int64) ([]Incoming, error)
}

type Handler interface {
	Handle(ctx context.Context, msg Incoming) error
}

type Poller struct {
	source     Source
	handler    Handler
	logger     *zap.Logger
	workers    int
	retryDelay time.Duration
}

func NewPoller(source Source, handler Handler, workers int, l *zap.Logger) *Poller {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Poller{
		source:     source,
		handler:    handler,
		logger:     l,
		workers:    workers,
		retryDelay: defaultRetryDelay,
	}
}

// Run polls until ctx is cancelled. Every message is handled in its own
// goroutine, at most workers at a time. Handler errors never stop the loop.
func (p *Poller) Run(ctx context.Context) error {
	var g errgroup.Group
	g.SetLimit(p.workers)

	var offset int64
	failures := 0

	for ctx.Err() == nil {
		updates, err := p.source.Updates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				break
			}

			delay := utils.Backoff(p.retryDelay, maxRetryDelay, failures)
			failures++
			p.logger.Warn("getting updates failed", zap.Error(err), zap.Duration("retry_in", delay))
			if utils.WaitFor(ctx, delay) != nil {
				break
			}
			continue
		}
		failures = 0

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			if u.UserID == 0 || u.Text == "" {
				continue
			}

			msg := u
			g.Go(func() error {
				p.handle(ctx, msg)
				return nil
			})
		}
	}

	p.logger.Info("stopping, waiting for handlers")
	_ = g.Wait()

	return nil
}

func (p *Poller) handle(ctx context.Context, msg Incoming) {
	defer func() {
		if r := recover(); r != nil {
			fields := append(logger.ChatFields(msg.UserID, msg.ChatID), zap.String("panic", fmt.Sprint(r)))
			p.logger.Error("handler panicked", fields...)
		}
	}()

	if err := p.handler.Handle(ctx, msg); err != nil {
		p.logger.Debug("message handled with error", zap.Int64("update_id", msg.UpdateID), zap.Error(err))
	}
}
