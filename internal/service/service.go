package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskify/taskify-api/internal/domain"
	"github.com/taskify/taskify-api/internal/events"
	"github.com/taskify/taskify-api/internal/ordering"
	"github.com/taskify/taskify-api/internal/platform/logger"
	"github.com/taskify/taskify-api/internal/store"
)

// ListFactory binds an ordered sibling list to a connection or transaction.
type ListFactory func(db store.DBTX) ordering.List

// Stores bundles the persistence dependencies of the services.
type Stores struct {
	Users         store.UserStore
	Projects      store.ProjectStore
	Boards        store.BoardStore
	Columns       store.ColumnStore
	Tasks         store.TaskStore
	Labels        store.LabelStore
	Notifications store.NotificationStore
	Ownership     store.OwnershipStore

	// TaskList orders tasks within a column.
	TaskList ListFactory
	// ColumnList orders columns within a board.
	ColumnList ListFactory
}

// BoardCache holds rendered board views. Implementations must tolerate
// being unavailable; a miss is always safe.
type BoardCache interface {
	Get(ctx context.Context, boardID uuid.UUID) (*domain.BoardView, bool)
	Set(ctx context.Context, view *domain.BoardView)
	Evict(ctx context.Context, boardIDs ...uuid.UUID)
}

// Deps are the shared collaborators of all services.
type Deps struct {
	DB     *sql.DB
	Stores Stores

	// Policy decides access to project resources. Defaults to
	// domain.DefaultAccessPolicy.
	Policy domain.AccessPolicy

	// TxOptions are applied to every transaction, typically
	// store.WithCommitErrorMapper with the driver's error mapper.
	TxOptions []store.TxOption

	// Cache and Events are optional.
	Cache  BoardCache
	Events events.EventEmitter

	Logger *slog.Logger
}

// base carries the collaborators and helpers every service shares.
type base struct {
	db        *sql.DB
	stores    Stores
	policy    domain.AccessPolicy
	txOptions []store.TxOption
	cache     BoardCache
	events    events.EventEmitter
	logger    *slog.Logger
}

func newBase(d Deps, component string) base {
	b := base{
		db:        d.DB,
		stores:    d.Stores,
		policy:    d.Policy,
		txOptions: d.TxOptions,
		cache:     d.Cache,
		events:    d.Events,
		logger:    d.Logger,
	}
	if b.policy == nil {
		b.policy = domain.DefaultAccessPolicy
	}
	if b.cache == nil {
		b.cache = noCache{}
	}
	if b.events == nil {
		b.events = events.NopEmitter{}
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	b.logger = b.logger.With(slog.String("component", component))
	return b
}

func (b *base) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, b.logger)
}

func (b *base) inTx(ctx context.Context, fn store.TxFn) error {
	return store.RunInTransaction(ctx, b.db, fn, b.txOptions...)
}

// ownerLookup resolves the project owner governing a resource.
type ownerLookup func(ctx context.Context, id uuid.UUID) (uuid.UUID, error)

// authorize resolves the owner of id with lookup and checks it against allow.
// Lookup errors, including not-found, are returned unchanged.
func authorize(ctx context.Context, actor domain.Actor, allow domain.AccessPolicy, lookup ownerLookup, id uuid.UUID) error {
	owner, err := lookup(ctx, id)
	if err != nil {
		return err
	}
	if !allow(actor, owner) {
		return ErrForbidden
	}
	return nil
}

// fail logs err at a level matching its class and wraps it for the caller.
func (b *base) fail(ctx context.Context, op, message string, err error, attrs ...any) error {
	log := b.log(ctx).With(attrs...)
	switch {
	case errors.Is(err, ErrForbidden), store.IsNotFoundError(err), errors.Is(err, ordering.ErrInvalidRange),
		domain.IsValidationError(err), errors.Is(err, store.ErrInvalidEntity), store.IsDuplicateError(err),
		errors.Is(err, ErrLabelInUse):
		log.Debug(message, slog.String("operation", op), slog.String("error", err.Error()))
	case store.IsConflictError(err):
		log.Warn(message, slog.String("operation", op), slog.String("error", err.Error()))
	default:
		log.Error(message, slog.String("operation", op), slog.String("error", err.Error()))
	}
	return NewServiceError(op, message, err)
}

// evictProjectBoards drops the cached views of every board in projectID.
func (b *base) evictProjectBoards(ctx context.Context, projectID uuid.UUID) {
	boards, err := b.stores.Boards.ListByProject(ctx, projectID)
	if err != nil {
		b.log(ctx).Warn("failed to list boards for cache eviction",
			slog.String("project_id", projectID.String()),
			slog.String("error", err.Error()))
		return
	}
	ids := make([]uuid.UUID, 0, len(boards))
	for _, board := range boards {
		ids = append(ids, board.ID)
	}
	b.cache.Evict(ctx, ids...)
}

type noCache struct{}

func (noCache) Get(context.Context, uuid.UUID) (*domain.BoardView, bool) { return nil, false }
func (noCache) Set(context.Context, *domain.BoardView)                   {}
func (noCache) Evict(context.Context, ...uuid.UUID)                      {}

// Page size limits of the list endpoints.
const (
	maxPageSize                 = 50
	defaultProjectPageSize      = 12
	defaultTaskPageSize         = 20
	defaultNotificationPageSize = 20
)
