package shortener

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sundayezeilo/shortlinks/codegen"
	"github.com/sundayezeilo/shortlinks/internal/errx"
	"github.com/sundayezeilo/shortlinks/internal/metrics"
)

const DefaultMaxCodeAttempts = 5

var errCodeInUse = errors.New("short code already in use")

// CreateLinkRequest represents the parameters for creating a new link.
type CreateLinkRequest struct {
	OwnerID     string
	OriginalURL string
	CustomCode  string // Optional: if empty, a code is generated
}

// UpdateLinkRequest changes the destination and/or the short code of a link
// owned by OwnerID.
type UpdateLinkRequest struct {
	ID          int64
	OwnerID     string
	OriginalURL *string
	ShortCode   *string
}

func (r UpdateLinkRequest) patch() LinkPatch {
	return LinkPatch{OriginalURL: r.OriginalURL, ShortCode: r.ShortCode}
}

// Service defines the link operations. Lookups that find nothing return
// found=false with a nil error; links owned by someone else are reported
// the same way.
type Service interface {
	Create(ctx context.Context, req CreateLinkRequest) (Link, error)
	LookupByCode(ctx context.Context, code string) (Link, bool, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Link, error)
	Update(ctx context.Context, req UpdateLinkRequest) (Link, bool, error)
	Delete(ctx context.Context, id int64, ownerID string) (bool, error)
}

type service struct {
	repo        Repository
	codes       codegen.Generator
	maxAttempts int
	cache       Cache
	logger      *slog.Logger
}

// ServiceConfig holds configuration for the service.
type ServiceConfig struct {
	CodeGenerator   codegen.Generator
	MaxCodeAttempts int   // inserts tried for a generated code (default: 5)
	Cache           Cache // optional
	Logger          *slog.Logger
}

// NewService creates a new service instance.
func NewService(repo Repository, config *ServiceConfig) Service {
	if config == nil {
		config = &ServiceConfig{}
	}

	codes := config.CodeGenerator
	if codes == nil {
		codes = codegen.NewBase62()
	}

	attempts := config.MaxCodeAttempts
	if attempts <= 0 {
		attempts = DefaultMaxCodeAttempts
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &service{
		repo:        repo,
		codes:       codes,
		maxAttempts: attempts,
		cache:       config.Cache,
		logger:      logger,
	}
}

// failKind narrows a repository error to the kinds callers may observe.
func failKind(err error) errx.Kind {
	switch k := errx.KindOf(err); k {
	case errx.Invalid, errx.Conflict:
		return k
	default:
		return errx.Storage
	}
}

func outcome(found bool, err error) string {
	switch {
	case err != nil:
		switch errx.KindOf(err) {
		case errx.Invalid:
			return "invalid"
		case errx.Conflict:
			return "conflict"
		default:
			return "storage"
		}
	case !found:
		return "not_found"
	default:
		return "ok"
	}
}

func observe(op string, found bool, err error) {
	metrics.LinkOperations.WithLabelValues(op, outcome(found, err)).Inc()
}

// Create creates a new short link with an optional custom code.
func (s *service) Create(ctx context.Context, req CreateLinkRequest) (link Link, err error) {
	const op = "shortener.service.Create"
	defer func() { observe("create", true, err) }()

	if err := validateOwner(req.OwnerID); err != nil {
		return Link{}, errx.E(op, errx.Invalid, err)
	}
	if err := validateURL(req.OriginalURL); err != nil {
		return Link{}, errx.E(op, errx.Invalid, err)
	}

	// Custom code path: validate and insert once. A taken code is the
	// caller's problem, never retried.
	if req.CustomCode != "" {
		if err := validateShortCode(req.CustomCode); err != nil {
			return Link{}, errx.E(op, errx.Invalid, err)
		}

		created, err := s.repo.Insert(ctx, Link{
			OwnerID:     req.OwnerID,
			OriginalURL: req.OriginalURL,
			ShortCode:   req.CustomCode,
		})
		if err != nil {
			if errx.Is(err, errx.Conflict) {
				return Link{}, errx.E(op, errx.Conflict, errCodeInUse)
			}
			return Link{}, errx.E(op, failKind(err), err)
		}
		return created, nil
	}

	// Generated code path: retry on conflicts only
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		code := s.codes.Generate()

		created, err := s.repo.Insert(ctx, Link{
			OwnerID:     req.OwnerID,
			OriginalURL: req.OriginalURL,
			ShortCode:   code,
		})
		if err == nil {
			return created, nil
		}
		if !errx.Is(err, errx.Conflict) {
			return Link{}, errx.E(op, errx.Storage, err)
		}

		metrics.CodeCollisions.Inc()
		s.logger.DebugContext(ctx, "generated short code collided",
			slog.Int("attempt", attempt),
		)
	}

	return Link{}, errx.Errorf(op, errx.Storage,
		"could not allocate a unique short code after %d attempts", s.maxAttempts)
}

// LookupByCode resolves a public short code. Any caller may resolve any code.
func (s *service) LookupByCode(ctx context.Context, code string) (link Link, found bool, err error) {
	const op = "shortener.service.LookupByCode"
	defer func() { observe("lookup", found, err) }()

	if !ValidShortCode(code) {
		return Link{}, false, nil
	}

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, code)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "link cache read failed",
				slog.String("code", code),
				slog.String("error", err.Error()),
			)
		case ok:
			return cached, true, nil
		}
	}

	link, found, err = s.repo.GetByCode(ctx, code)
	if err != nil {
		return Link{}, false, errx.E(op, errx.Storage, err)
	}
	if !found {
		return Link{}, false, nil
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, link); err != nil {
			s.logger.WarnContext(ctx, "link cache write failed",
				slog.String("code", code),
				slog.String("error", err.Error()),
			)
		}
	}
	return link, true, nil
}

// ListByOwner returns the owner's links, most recently updated first. The
// result is never nil.
func (s *service) ListByOwner(ctx context.Context, ownerID string) (links []Link, err error) {
	const op = "shortener.service.ListByOwner"
	defer func() { observe("list", true, err) }()

	if err := validateOwner(ownerID); err != nil {
		return nil, errx.E(op, errx.Invalid, err)
	}

	links, err = s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, errx.E(op, errx.Storage, err)
	}
	if links == nil {
		links = []Link{}
	}
	return links, nil
}

type access uint8

const (
	accessDenied access = iota // absent or owned by someone else
	accessOwned
)

// authorize loads link id and checks that ownerID owns it. A missing link
// and a foreign link are indistinguishable to the caller.
func (s *service) authorize(ctx context.Context, id int64, ownerID string) (Link, access, error) {
	if id <= 0 {
		return Link{}, accessDenied, nil
	}

	link, found, err := s.repo.GetOwned(ctx, id, ownerID)
	if err != nil {
		return Link{}, accessDenied, err
	}
	if !found || link.OwnerID != ownerID {
		return Link{}, accessDenied, nil
	}
	return link, accessOwned, nil
}

// Update applies a partial change to a link the caller owns.
func (s *service) Update(ctx context.Context, req UpdateLinkRequest) (link Link, found bool, err error) {
	const op = "shortener.service.Update"
	defer func() { observe("update", found, err) }()

	if err := validateOwner(req.OwnerID); err != nil {
		return Link{}, false, errx.E(op, errx.Invalid, err)
	}
	patch := req.patch()
	if err := validatePatch(patch); err != nil {
		return Link{}, false, errx.E(op, errx.Invalid, err)
	}

	current, acc, err := s.authorize(ctx, req.ID, req.OwnerID)
	if err != nil {
		return Link{}, false, errx.E(op, errx.Storage, err)
	}
	if acc != accessOwned {
		return Link{}, false, nil
	}

	updated, found, err := s.repo.UpdateOwned(ctx, req.ID, req.OwnerID, patch)
	if err != nil {
		if errx.Is(err, errx.Conflict) {
			return Link{}, false, errx.E(op, errx.Conflict, errCodeInUse)
		}
		return Link{}, false, errx.E(op, errx.Storage, err)
	}
	if !found {
		// deleted between authorize and update
		return Link{}, false, nil
	}

	s.invalidate(ctx, current.ShortCode, updated.ShortCode)
	return updated, true, nil
}

// Delete removes a link the caller owns.
func (s *service) Delete(ctx context.Context, id int64, ownerID string) (deleted bool, err error) {
	const op = "shortener.service.Delete"
	defer func() { observe("delete", deleted, err) }()

	if err := validateOwner(ownerID); err != nil {
		return false, errx.E(op, errx.Invalid, err)
	}

	current, acc, err := s.authorize(ctx, id, ownerID)
	if err != nil {
		return false, errx.E(op, errx.Storage, err)
	}
	if acc != accessOwned {
		return false, nil
	}

	deleted, err = s.repo.DeleteOwned(ctx, id, ownerID)
	if err != nil {
		return false, errx.E(op, errx.Storage, err)
	}
	if deleted {
		s.invalidate(ctx, current.ShortCode)
	}
	return deleted, nil
}

func (s *service) invalidate(ctx context.Context, codes ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, codes...); err != nil {
		s.logger.WarnContext(ctx, "link cache invalidation failed",
			slog.Any("codes", codes),
			slog.String("error", err.Error()),
		)
	}
}
