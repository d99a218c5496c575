// Package action composes credential verification, authorization, input
// validation and persistence into named, independently callable actions.
package action

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/balcao/balcao/internal/auth"
	"github.com/balcao/balcao/internal/metrics"
	"github.com/balcao/balcao/internal/model"
	"github.com/balcao/balcao/internal/policy"
	"github.com/balcao/balcao/internal/revalidate"
	"github.com/balcao/balcao/internal/store"
	"github.com/balcao/balcao/internal/validator"
)

// Authorizer decides whether claims may perform a named action.
type Authorizer interface {
	Authorize(action string, claims model.Claims) error
}

// PasswordHasher hashes user passwords before they are stored.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// Deps are the collaborators shared by every action.
type Deps struct {
	Verifier auth.Verifier
	Policy   Authorizer
	Notifier revalidate.Notifier
	Metrics  metrics.Recorder
	Logger   *slog.Logger
	Hasher   PasswordHasher
}

func (d Deps) withDefaults() Deps {
	if d.Policy == nil {
		d.Policy = policy.Default
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Notifier == nil {
		d.Notifier = revalidate.NewLogNotifier(d.Logger)
	}
	if d.Metrics == nil {
		d.Metrics = metrics.NewNoop()
	}
	if d.Hasher == nil {
		d.Hasher = auth.NewPasswordHasher(auth.DefaultArgon2Params)
	}
	return d
}

// RunFunc performs an action's work on validated input.
type RunFunc[In, Out any] func(ctx context.Context, claims model.Claims, in In) (Out, error)

// Action runs verify, authorize, validate and run in that order. Any failure
// stops the pipeline. On success the action's stale paths are announced.
type Action[In, Out any] struct {
	name   string
	schema *validator.Schema[In]
	run    RunFunc[In, Out]
	stale  []string
	deps   Deps
}

// New declares an action. name is also the policy key.
func New[In, Out any](deps Deps, name string, schema *validator.Schema[In], run RunFunc[In, Out], stale ...string) *Action[In, Out] {
	deps = deps.withDefaults()
	return &Action[In, Out]{
		name:   name,
		schema: schema,
		run:    run,
		stale:  stale,
		deps:   deps,
	}
}

// Name returns the action name.
func (a *Action[In, Out]) Name() string {
	return a.name
}

// StalePaths returns the paths announced after a successful call.
func (a *Action[In, Out]) StalePaths() []string {
	return append([]string(nil), a.stale...)
}

// Call executes the action for the bearer token and raw JSON input.
func (a *Action[In, Out]) Call(ctx context.Context, token string, raw []byte) (Out, error) {
	var zero Out
	start := time.Now()

	claims, err := a.deps.Verifier.Verify(token)
	if err != nil {
		a.finish(ctx, claims, start, err)
		return zero, err
	}

	if err := a.deps.Policy.Authorize(a.name, claims); err != nil {
		a.finish(ctx, claims, start, err)
		return zero, err
	}

	in, err := a.schema.Validate(raw)
	if err != nil {
		a.finish(ctx, claims, start, err)
		return zero, err
	}

	out, err := a.run(ctx, claims, in)
	if err != nil {
		a.finish(ctx, claims, start, err)
		return zero, err
	}

	if len(a.stale) > 0 {
		a.deps.Notifier.Stale(ctx, a.stale...)
	}
	a.finish(ctx, claims, start, nil)
	return out, nil
}

// Invoke is Call with an untyped result, for transports that dispatch by name.
func (a *Action[In, Out]) Invoke(ctx context.Context, token string, raw []byte) (any, error) {
	return a.Call(ctx, token, raw)
}

func (a *Action[In, Out]) finish(ctx context.Context, claims model.Claims, start time.Time, err error) {
	duration := time.Since(start)
	outcome := Outcome(err)
	a.deps.Metrics.ObserveAction(a.name, outcome, duration)

	attrs := []any{"action", a.name, "outcome", outcome, "duration_ms", duration.Milliseconds()}
	if claims.SubjectID != "" {
		attrs = append(attrs, "subject", claims.SubjectID, "role", claims.Role.String())
	}

	switch outcome {
	case metrics.OutcomeOK:
		a.deps.Logger.InfoContext(ctx, "action completed", attrs...)
	case metrics.OutcomeUnauthenticated, metrics.OutcomeForbidden, metrics.OutcomeRestricted:
		a.deps.Logger.WarnContext(ctx, "action denied", append(attrs, "reason", err.Error())...)
	case metrics.OutcomeInvalid, metrics.OutcomeNotFound:
		a.deps.Logger.InfoContext(ctx, "action rejected", append(attrs, "reason", err.Error())...)
	default:
		a.deps.Logger.ErrorContext(ctx, "action failed", append(attrs, "error", err)...)
	}
}

// Outcome classifies an action error for metrics and logs.
func Outcome(err error) string {
	var verr *validator.ValidationError
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, auth.ErrUnauthenticated):
		return metrics.OutcomeUnauthenticated
	case errors.Is(err, policy.ErrForbidden):
		return metrics.OutcomeForbidden
	case errors.As(err, &verr):
		return metrics.OutcomeInvalid
	case errors.Is(err, store.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, ErrRestricted):
		return metrics.OutcomeRestricted
	default:
		return metrics.OutcomeError
	}
}
