package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/taskdesk/taskdesk-api/internal/cache"
	"github.com/taskdesk/taskdesk-api/internal/domain"
	"github.com/taskdesk/taskdesk-api/internal/platform/logger"
	"github.com/taskdesk/taskdesk-api/internal/ratelimit"
	"github.com/taskdesk/taskdesk-api/internal/redact"
)

func (p *Pipeline) validate(_ context.Context, st *State) error {
	req := st.Request
	var err error

	switch req.Op {
	case ListTasks:
		st.filter, err = p.validator.StatusFilter(req.StatusFilter)
	case GetTask, DeleteTask:
		st.taskID, err = p.validator.TaskID(req.TaskID)
	case CreateTask:
		st.input, err = p.validator.Task(req.Body)
	case UpdateTask:
		if st.taskID, err = p.validator.TaskID(req.TaskID); err == nil {
			st.patch, err = p.validator.Patch(req.Body)
		}
	case Register:
		st.creds, err = p.validator.Registration(req.Body)
	case Login:
		st.creds, err = p.validator.Login(req.Body)
	}
	return err
}

func (p *Pipeline) authenticate(ctx context.Context, st *State) error {
	id, err := p.auth.Verify(ctx, st.Request.Authorization)
	if err != nil {
		return err
	}
	st.Result.Identity = &id
	return nil
}

// rateLimit keys authenticated callers by user and everyone else by client
// address. A failing limiter admits the request.
func (p *Pipeline) rateLimit(ctx context.Context, st *State) error {
	key := ratelimit.ClientKey(st.Request.ClientAddr)
	if st.Result.Identity != nil {
		key = ratelimit.UserKey(st.Result.Identity.UserID.String())
	}

	d, err := p.limiter.Admit(ctx, key)
	if err != nil {
		logger.FromContextOrDefault(ctx, p.logger).Warn("rate limiter unavailable; admitting request",
			slog.String("error", redact.Error(err)))
		return nil
	}
	st.Result.RateLimit = d
	if !d.Allowed {
		return ratelimit.NewExceededError(d, p.limitMessage)
	}
	return nil
}

// cacheLookup answers a listing from cache when it can. Any cache failure
// or undecodable entry is treated as a miss.
func (p *Pipeline) cacheLookup(ctx context.Context, st *State) error {
	log := logger.FromContextOrDefault(ctx, p.logger)
	key := cache.ListKey(st.filter)

	data, hit, err := p.cache.Get(ctx, key)
	if err != nil {
		log.Warn("cache read failed; treating as miss",
			slog.String("key", key),
			slog.String("error", redact.Error(err)))
		return nil
	}
	if !hit {
		return nil
	}

	var tasks []domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		log.Warn("discarding undecodable cache entry", slog.String("key", key))
		return nil
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}

	st.Result.Tasks = tasks
	st.Result.CacheHit = true
	st.Finish()
	return nil
}

// listTasks reads through to the store. Concurrent misses for the same
// key and generation share one store call.
func (p *Pipeline) listTasks(ctx context.Context, st *State) error {
	key := cache.ListKey(st.filter)
	gen := p.generation.Load()
	filter := st.filter

	v, err, _ := p.flights.Do(key+"@"+strconv.FormatUint(gen, 10), func() (any, error) {
		flightCtx := context.WithoutCancel(ctx)
		tasks, err := p.tasks.List(flightCtx, filter)
		if err != nil {
			return nil, err
		}
		p.fillCache(flightCtx, key, gen, tasks)
		return tasks, nil
	})
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	shared := v.([]domain.Task)
	tasks := make([]domain.Task, len(shared))
	copy(tasks, shared)
	st.Result.Tasks = tasks
	return nil
}

func (p *Pipeline) fillCache(ctx context.Context, key string, gen uint64, tasks []domain.Task) {
	if p.cacheTTL <= 0 || p.generation.Load() != gen {
		return
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return
	}
	if err := p.cache.Set(ctx, key, data, p.cacheTTL); err != nil {
		logger.FromContextOrDefault(ctx, p.logger).Warn("cache write failed",
			slog.String("key", key),
			slog.String("error", redact.Error(err)))
		return
	}
	// A write may have invalidated between the check and the Set.
	if p.generation.Load() != gen {
		_ = p.cache.Invalidate(ctx, key)
	}
}

func (p *Pipeline) getTask(ctx context.Context, st *State) error {
	task, err := p.tasks.GetByID(ctx, st.taskID)
	if err != nil {
		return fmt.Errorf("get task: %w", err)
	}
	st.Result.Task = task
	return nil
}

func (p *Pipeline) createTask(ctx context.Context, st *State) error {
	task := domain.NewTask(st.input)
	if err := p.tasks.Create(ctx, task); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	st.Result.Task = task
	return nil
}

func (p *Pipeline) updateTask(ctx context.Context, st *State) error {
	task, err := p.tasks.Update(ctx, st.taskID, st.patch)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	st.Result.Task = task
	return nil
}

func (p *Pipeline) deleteTask(ctx context.Context, st *State) error {
	if err := p.tasks.Delete(ctx, st.taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	st.Result.DeletedID = st.taskID
	return nil
}

func (p *Pipeline) register(ctx context.Context, st *State) error {
	user, err := p.auth.Register(ctx, st.creds)
	if err != nil {
		return err
	}
	st.Result.User = user
	return nil
}

func (p *Pipeline) login(ctx context.Context, st *State) error {
	token, err := p.auth.Login(ctx, st.creds)
	if err != nil {
		return err
	}
	st.Result.Token = token
	return nil
}

// invalidate drops every listing a write can affect. The write has
// already committed, so failures are logged and the request succeeds.
func (p *Pipeline) invalidate(ctx context.Context, st *State) error {
	p.generation.Add(1)

	ctx = context.WithoutCancel(ctx)
	if err := p.cache.Invalidate(ctx, p.listKeys...); err != nil {
		logger.FromContextOrDefault(ctx, p.logger).Warn("cache invalidation failed",
			slog.String("op", st.Request.Op.String()),
			slog.String("error", redact.Error(err)))
	}
	return nil
}
