// Package pipeline runs every API operation through an explicit, ordered
// list of stages: validate, authenticate (task writes only), rate limit,
// cache lookup (listings only), persist and invalidate. The driver stops
// at the first stage that returns an error or completes the request.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/taskdesk/taskdesk-api/internal/cache"
	"github.com/taskdesk/taskdesk-api/internal/domain"
	"github.com/taskdesk/taskdesk-api/internal/platform/logger"
	"github.com/taskdesk/taskdesk-api/internal/ratelimit"
	"github.com/taskdesk/taskdesk-api/internal/redact"
	"github.com/taskdesk/taskdesk-api/internal/service/auth"
	"github.com/taskdesk/taskdesk-api/internal/store"
	"github.com/taskdesk/taskdesk-api/internal/validation"
	"golang.org/x/sync/singleflight"
)

// DefaultRateLimitMessage is used when Config.RateLimitMessage is empty.
const DefaultRateLimitMessage = "Too many requests, please try again later."

// Authenticator is the subset of *auth.Authenticator the pipeline needs.
type Authenticator interface {
	Verify(ctx context.Context, header string) (auth.Identity, error)
	Register(ctx context.Context, creds domain.Credentials) (*domain.User, error)
	Login(ctx context.Context, creds domain.Credentials) (*auth.Token, error)
}

// Request is a transport-neutral API call. Raw fields are validated by
// the first stage.
type Request struct {
	Op            Op
	TaskID        string
	StatusFilter  string
	Body          []byte
	Authorization string
	ClientAddr    string
}

// Result is what a completed (or failed) run produced.
type Result struct {
	Op        Op
	Stage     string
	Task      *domain.Task
	Tasks     []domain.Task
	DeletedID string
	User      *domain.User
	Token     *auth.Token
	Identity  *auth.Identity
	CacheHit  bool
	RateLimit ratelimit.Decision
}

// State is threaded through the stages of one run.
type State struct {
	Request Request
	Result  Result

	taskID string
	filter *domain.TaskStatus
	input  domain.TaskInput
	patch  domain.TaskPatch
	creds  domain.Credentials

	done bool
}

// Finish marks the request as answered; remaining stages are skipped.
func (st *State) Finish() { st.done = true }

// Stage is one step of an operation.
type Stage func(ctx context.Context, st *State) error

type step struct {
	name string
	run  Stage
}

// Config holds the pipeline's tunables.
type Config struct {
	CacheTTL         time.Duration
	RateLimitMessage string
}

// Deps are the gateways and services the pipeline drives.
type Deps struct {
	Validator *validation.Validator
	Auth      Authenticator
	Tasks     store.TaskStore
	Cache     cache.Gateway
	Limiter   ratelimit.Limiter
	Logger    *slog.Logger
}

// Pipeline executes operations. It is safe for concurrent use.
type Pipeline struct {
	validator    *validation.Validator
	auth         Authenticator
	tasks        store.TaskStore
	cache        cache.Gateway
	limiter      ratelimit.Limiter
	logger       *slog.Logger
	cacheTTL     time.Duration
	limitMessage string
	listKeys     []string

	// generation is bumped on every task write; a listing read under an
	// older generation is not cached.
	generation atomic.Uint64
	flights    singleflight.Group

	stages map[Op][]step
}

// New builds a Pipeline. A nil Cache disables caching.
func New(deps Deps, cfg Config) (*Pipeline, error) {
	switch {
	case deps.Validator == nil:
		return nil, errors.New("validator cannot be nil")
	case deps.Auth == nil:
		return nil, errors.New("authenticator cannot be nil")
	case deps.Tasks == nil:
		return nil, errors.New("task store cannot be nil")
	case deps.Limiter == nil:
		return nil, errors.New("rate limiter cannot be nil")
	}
	if deps.Cache == nil {
		deps.Cache = cache.Noop{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if cfg.RateLimitMessage == "" {
		cfg.RateLimitMessage = DefaultRateLimitMessage
	}

	p := &Pipeline{
		validator:    deps.Validator,
		auth:         deps.Auth,
		tasks:        deps.Tasks,
		cache:        deps.Cache,
		limiter:      deps.Limiter,
		logger:       deps.Logger.With(slog.String("component", "pipeline")),
		cacheTTL:     cfg.CacheTTL,
		limitMessage: cfg.RateLimitMessage,
		listKeys:     cache.ListKeys(deps.Validator.Statuses()),
	}

	validate := step{"validate", p.validate}
	authenticate := step{"authenticate", p.authenticate}
	rateLimit := step{"rate_limit", p.rateLimit}
	invalidate := step{"invalidate", p.invalidate}

	p.stages = map[Op][]step{
		ListTasks:  {validate, rateLimit, {"cache_lookup", p.cacheLookup}, {"persist", p.listTasks}},
		GetTask:    {validate, rateLimit, {"persist", p.getTask}},
		CreateTask: {validate, authenticate, rateLimit, {"persist", p.createTask}, invalidate},
		UpdateTask: {validate, authenticate, rateLimit, {"persist", p.updateTask}, invalidate},
		DeleteTask: {validate, authenticate, rateLimit, {"persist", p.deleteTask}, invalidate},
		Register:   {validate, rateLimit, {"persist", p.register}},
		Login:      {validate, rateLimit, {"persist", p.login}},
	}
	return p, nil
}

// StageNames returns the ordered stage names of op.
func (p *Pipeline) StageNames(op Op) []string {
	steps := p.stages[op]
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.name
	}
	return names
}

// Run executes req through its stage list. The returned Result is never
// nil; Result.Stage names the last stage that ran.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	st := &State{Request: req, Result: Result{Op: req.Op}}

	steps, ok := p.stages[req.Op]
	if !ok {
		return &st.Result, fmt.Errorf("unknown operation %d", req.Op)
	}

	var err error
	for _, s := range steps {
		st.Result.Stage = s.name
		if err = s.run(ctx, st); err != nil || st.done {
			break
		}
	}

	p.logOutcome(ctx, st, err, time.Since(start))
	return &st.Result, err
}

func (p *Pipeline) logOutcome(ctx context.Context, st *State, err error, elapsed time.Duration) {
	log := logger.FromContextOrDefault(ctx, p.logger)
	attrs := []any{
		slog.String("op", st.Request.Op.String()),
		slog.String("stage", st.Result.Stage),
		slog.Bool("cache_hit", st.Result.CacheHit),
		slog.Int64("duration_ms", elapsed.Milliseconds()),
	}

	switch {
	case err == nil:
		log.Info("request completed", attrs...)
	case errors.Is(err, ratelimit.ErrLimited):
		log.Warn("request rate limited", append(attrs, slog.String("error", err.Error()))...)
	case IsClientError(err):
		log.Debug("request rejected", append(attrs, slog.String("error", err.Error()))...)
	default:
		log.Error("request failed", append(attrs, slog.String("error", redact.Error(err)))...)
	}
}

// IsClientError reports whether err was caused by the request rather than
// by a failing dependency.
func IsClientError(err error) bool {
	for _, target := range []error{
		domain.ErrValidation,
		auth.ErrMissingToken,
		auth.ErrInvalidToken,
		auth.ErrExpiredToken,
		auth.ErrInvalidCredentials,
		store.ErrNotFound,
		store.ErrDuplicate,
		ratelimit.ErrLimited,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
