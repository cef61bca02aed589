package worker

import (
    "context"
    "errors"
    "sync"

    "go.uber.org/zap"
)

var ErrStopped = errors.New("worker pool stopped")

type job struct {
    key  int64
    ctx  context.Context
    fn   func(context.Context) error
    done chan error
}

// Pool runs jobs on a fixed set of workers. Jobs sharing a key always land on
// the same worker, so they execute one at a time in submission order.
type Pool struct {
    logger *zap.Logger
    count  int
    queues []chan job
    wg     sync.WaitGroup
    stop   chan struct{}
    once   sync.Once
}

func NewPool(logger *zap.Logger, count int) *Pool {
    if count < 1 {
        count = 1
    }
    queues := make([]chan job, count)
    for i := range queues {
        queues[i] = make(chan job)
    }
    return &Pool{
        logger: logger,
        count:  count,
        queues: queues,
        stop:   make(chan struct{}),
    }
}

func (p *Pool) Start(ctx context.Context) {
    p.logger.Debug("Starting worker pool", zap.Int("workers", p.count))

    for i := 0; i < p.count; i++ {
        p.wg.Add(1)
        go p.worker(ctx, i)
    }
}

func (p *Pool) Stop() {
    p.once.Do(func() {
        p.logger.Debug("Stopping worker pool...")
        close(p.stop)
    })
    p.wg.Wait()
}

// Do runs fn on the worker owning key and waits for its result.
func (p *Pool) Do(ctx context.Context, key int64, fn func(context.Context) error) error {
    j := job{key: key, ctx: ctx, fn: fn, done: make(chan error, 1)}

    select {
    case p.queues[p.shard(key)] <- j:
    case <-p.stop:
        return ErrStopped
    case <-ctx.Done():
        return ctx.Err()
    }

    select {
    case err := <-j.done:
        return err
    case <-ctx.Done():
        return ctx.Err()
    }
}

func (p *Pool) shard(key int64) int {
    if key < 0 {
        key = -key
    }
    return int(key % int64(p.count))
}

func (p *Pool) worker(ctx context.Context, id int) {
    defer p.wg.Done()

    for {
        select {
        case <-p.stop:
            return
        case <-ctx.Done():
            return
        case j := <-p.queues[id]:
            j.done <- p.run(id, j)
        }
    }
}

func (p *Pool) run(workerID int, j job) (err error) {
    defer func() {
        if r := recover(); r != nil {
            p.logger.Error("job panicked",
                zap.Int("worker", workerID),
                zap.Int64("key", j.key),
                zap.Any("panic", r),
            )
            err = errors.New("worker job panicked")
        }
    }()

    if err := j.ctx.Err(); err != nil {
        return err
    }
    return j.fn(j.ctx)
}
