package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/spec-kit/telecom-backoffice/internal/clock"
	"github.com/spec-kit/telecom-backoffice/internal/domain"
	"github.com/spec-kit/telecom-backoffice/internal/events"
	"github.com/spec-kit/telecom-backoffice/internal/observability"
	"github.com/spec-kit/telecom-backoffice/internal/repository"
	apperrors "github.com/spec-kit/telecom-backoffice/pkg/util"
)

// Business key prefixes.
const (
	customerKeyPrefix = "CUS-"
	campaignKeyPrefix = "CMP-"
	billKeyPrefix     = "BIL-"
	ticketKeyPrefix   = "TCK-"
)

func generateKey(prefix string) string {
	return prefix + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Runtime bundles the cross-cutting collaborators every service uses.
// Zero fields are replaced with no-op defaults.
type Runtime struct {
	Clock      clock.Clock
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Dispatcher events.Dispatcher
}

func (r Runtime) withDefaults() Runtime {
	if r.Clock == nil {
		r.Clock = clock.System()
	}
	if r.Logger == nil {
		r.Logger = zap.NewNop()
	}
	return r
}

func (r Runtime) tracer() trace.Tracer {
	return otel.Tracer(observability.TracerName)
}

func (r Runtime) publish(ctx context.Context, event events.Event) {
	if r.Dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = r.Clock.Now()
	}
	_ = r.Dispatcher.Publish(ctx, event)
}

// lookupError maps a repository read failure to a NotFound or Unexpected error.
func lookupError(err error, resource string, details map[string]any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, details)
	}
	return apperrors.NewInternalError(err)
}

// failSpan records err on span and returns it unchanged.
func failSpan(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// loadAccount fetches a user and resolves its package by business key.
// A dangling or unset package reference yields a nil package, not an error.
func loadAccount(ctx context.Context, users repository.UserRepository, packages repository.PackageRepository, userID int64) (*domain.User, *domain.Package, error) {
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, lookupError(err, "user", map[string]any{"user_id": userID})
	}
	key := user.PackageKey()
	if key == "" {
		return user, nil, nil
	}
	pkg, err := packages.GetByPackageID(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return user, nil, nil
		}
		return nil, nil, apperrors.NewInternalError(err)
	}
	return user, pkg, nil
}

func int64Ptr(v int64) *int64 { return &v }
