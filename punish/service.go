package punish

import (
	"context"
	"errors"
	"time"

	"github.com/kasuganosora/modguard/async"
	"github.com/kasuganosora/modguard/audit"
	"github.com/kasuganosora/modguard/cache"
	"github.com/kasuganosora/modguard/model"
	"github.com/kasuganosora/modguard/notify"
	"github.com/kasuganosora/modguard/store"
	"go.uber.org/zap"
)

var (
	// ErrAlreadyPunished signals an existing effective punishment of the
	// same category for the target.
	ErrAlreadyPunished = errors.New("punish: target already has an effective punishment in this category")
	// ErrNoTarget signals a request with neither identity nor address.
	ErrNoTarget = errors.New("punish: punishment needs a target identity or address")
	// ErrInvalidType signals an unknown punishment type.
	ErrInvalidType = errors.New("punish: unknown punishment type")
	// ErrDurationNotAllowed signals a duration on a type that cannot carry
	// one.
	ErrDurationNotAllowed = errors.New("punish: punishment type does not accept a duration")
	// ErrBanExempt signals an address ban against an exempted player.
	ErrBanExempt = errors.New("punish: target is exempt from address bans")
)

// exclusiveCategories are the categories where a second effective
// punishment makes no sense and is rejected. Warns and kicks stack (the
// points system depends on it) and notes never block.
var exclusiveCategories = map[model.Category]bool{
	model.CategoryBan:    true,
	model.CategoryMute:   true,
	model.CategoryFreeze: true,
}

// pointsByType is the score a target accrues per punishment, decayed by
// the periodic sweep.
var pointsByType = map[model.Type]float64{
	model.TypeBan:      10,
	model.TypeTempBan:  7,
	model.TypeIPBan:    12,
	model.TypeMute:     3,
	model.TypeTempMute: 2,
	model.TypeIPMute:   4,
	model.TypeKick:     1,
	model.TypeWarn:     2,
}

// Target identifies who a punishment applies to. At least one of Identity
// and Address must be set.
type Target struct {
	Identity string
	Name     string
	Address  string
}

// IssueRequest describes one punishment to create.
type IssueRequest struct {
	Type           model.Type
	Target         Target
	IssuerIdentity string
	IssuerName     string
	Reason         string
	Duration       time.Duration // 0 = permanent
	Silent         bool
	AddressBased   bool
}

// RevokeRequest describes an unban/unmute action.
type RevokeRequest struct {
	Category        model.Category
	TargetIdentity  string
	TargetAddress   string
	RemoverIdentity string
	RemoverName     string
	Reason          string
}

// Service orchestrates the punishment lifecycle: writes go to the store
// first, then populate the cache; reads check the cache first and fall
// through to the store asynchronously. The store is the source of truth,
// always.
type Service struct {
	store    *store.Store
	cache    *cache.Punishments
	pool     *async.Pool
	notifier notify.Notifier
	audit    *audit.Service
	logger   *zap.Logger
	origin   string
	now      func() time.Time
}

// NewService wires the service. auditSvc may be nil to disable the staff
// action log.
func NewService(st *store.Store, c *cache.Punishments, pool *async.Pool, notifier notify.Notifier, auditSvc *audit.Service, origin string, logger *zap.Logger) *Service {
	return &Service{
		store:    st,
		cache:    c,
		pool:     pool,
		notifier: notifier,
		audit:    auditSvc,
		logger:   logger,
		origin:   origin,
		now:      time.Now,
	}
}

// Cache exposes the cache tiers for collaborators that manage frozen and
// staff-toggle state directly.
func (s *Service) Cache() *cache.Punishments {
	return s.cache
}

// Issue creates one punishment. For exclusive categories an existing
// effective punishment is rejected with ErrAlreadyPunished.
//
// The existence check and the insert are not atomic: two concurrent calls
// for the same target can both pass the check and both insert, leaving two
// effective rows. There is no store-level uniqueness constraint backing
// this rule; the window is accepted and left visible rather than papered
// over.
func (s *Service) Issue(ctx context.Context, req IssueRequest) *async.Future[*model.Punishment] {
	if !req.Type.Valid() {
		return async.Err[*model.Punishment](ErrInvalidType)
	}
	if req.Target.Identity == "" && req.Target.Address == "" {
		return async.Err[*model.Punishment](ErrNoTarget)
	}
	if req.Duration > 0 && !req.Type.HasDuration() {
		return async.Err[*model.Punishment](ErrDurationNotAllowed)
	}
	if req.AddressBased && req.Target.Address == "" {
		return async.Err[*model.Punishment](ErrNoTarget)
	}

	return async.Go(s.pool, func() (*model.Punishment, error) {
		now := s.now()
		cat := req.Type.Category()

		if req.AddressBased && req.Target.Identity != "" {
			exempt, err := s.addressBanExempt(ctx, req.Target.Identity)
			if err != nil {
				return nil, s.fail("issue", err)
			}
			if exempt {
				return nil, ErrBanExempt
			}
		}

		if exclusiveCategories[cat] {
			existing, err := s.findEffective(ctx, cat, req.Target.Identity, req.Target.Address, now)
			if err != nil {
				return nil, s.fail("issue", err)
			}
			if existing != nil {
				return nil, ErrAlreadyPunished
			}
		}

		p := &model.Punishment{
			Type:           req.Type,
			TargetIdentity: req.Target.Identity,
			TargetName:     req.Target.Name,
			TargetAddress:  req.Target.Address,
			IssuerIdentity: req.IssuerIdentity,
			IssuerName:     req.IssuerName,
			Reason:         req.Reason,
			OriginServer:   s.origin,
			CreatedAt:      now,
			Active:         true,
			Silent:         req.Silent,
			AddressBased:   req.AddressBased,
		}
		if req.Duration > 0 {
			expires := now.Add(req.Duration)
			p.ExpiresAt = &expires
		}

		if err := s.store.Insert(ctx, p); err != nil {
			return nil, s.fail("issue", err)
		}

		// Write-through: populate both key kinds before anyone can read.
		s.cache.Put(p)
		if p.Type.Category() == model.CategoryFreeze && p.TargetIdentity != "" {
			s.cache.Freeze(p.TargetIdentity)
		}

		if pts := pointsByType[p.Type]; pts > 0 && p.TargetIdentity != "" {
			if err := s.store.AdjustPoints(ctx, p.TargetIdentity, pts); err != nil {
				s.logger.Warn("points accrual failed",
					zap.Int64("punishment_id", p.ID), zap.Error(err))
			}
			s.cache.InvalidatePlayer(p.TargetIdentity)
		}

		s.logAction(ctx, req.IssuerIdentity, req.IssuerName, "punishment."+string(p.Type), p.TargetIdentity, p)
		if !p.Silent {
			s.broadcast(ctx, notify.EventIssued, p)
		}
		return p, nil
	})
}

// Revoke resolves the target's current effective punishment in the
// category and removes it. Returns false when nothing was there to remove
// (double-removal is an idempotent no-op). The cache entries for both key
// kinds are invalidated unconditionally, even when already stale, so a
// racing repopulation cannot resurrect the removed punishment.
func (s *Service) Revoke(ctx context.Context, req RevokeRequest) *async.Future[bool] {
	return async.Go(s.pool, func() (bool, error) {
		defer s.cache.Invalidate(req.Category, req.TargetIdentity, req.TargetAddress)

		p, err := s.store.GetEffectiveByIdentity(ctx, req.TargetIdentity, req.Category)
		if err != nil {
			return false, s.fail("revoke", err)
		}
		if p == nil {
			p, err = s.store.GetEffectiveByAddress(ctx, req.TargetAddress, req.Category)
			if err != nil {
				return false, s.fail("revoke", err)
			}
		}
		if p == nil {
			return false, nil
		}

		ok, err := s.store.Remove(ctx, p.ID, req.RemoverIdentity, req.RemoverName, req.Reason, s.now())
		if err != nil {
			return false, s.fail("revoke", err)
		}
		s.cache.Invalidate(req.Category, p.TargetIdentity, p.TargetAddress)
		if !ok {
			return false, nil
		}
		if req.Category == model.CategoryFreeze && p.TargetIdentity != "" {
			s.cache.Unfreeze(p.TargetIdentity)
		}

		s.logAction(ctx, req.RemoverIdentity, req.RemoverName, "punishment.revoke", p.TargetIdentity, req)
		if !p.Silent {
			removed, getErr := s.store.GetByID(ctx, p.ID)
			if getErr == nil && removed != nil {
				s.broadcast(ctx, notify.EventRevoked, removed)
			}
		}
		return true, nil
	})
}

// GetEffective answers "is this target currently punished in this
// category?". A cache hit is re-validated against the time-derived check
// before being trusted; a miss or invalid hit falls through to the store
// asynchronously and repopulates the cache on a positive result. A
// confirmed miss is never cached: a moment-old insert elsewhere must stay
// visible.
func (s *Service) GetEffective(ctx context.Context, cat model.Category, identity, address string) *async.Future[*model.Punishment] {
	now := s.now()
	if p, ok := s.cache.Get(cat, cache.ByIdentity, identity); ok && p.EffectiveAt(now) {
		return async.Resolved(p, nil)
	}
	if p, ok := s.cache.Get(cat, cache.ByAddress, address); ok && p.EffectiveAt(now) {
		return async.Resolved(p, nil)
	}

	return async.Go(s.pool, func() (*model.Punishment, error) {
		p, err := s.findEffectiveStore(ctx, cat, identity, address, s.now())
		if err != nil {
			return nil, s.fail("get_effective", err)
		}
		if p != nil {
			s.cache.Put(p)
		}
		return p, nil
	})
}

// GetByID fetches one punishment row.
func (s *Service) GetByID(ctx context.Context, id int64) *async.Future[*model.Punishment] {
	return async.Go(s.pool, func() (*model.Punishment, error) {
		p, err := s.store.GetByID(ctx, id)
		if err != nil {
			return nil, s.fail("get_by_id", err)
		}
		return p, nil
	})
}

// Page is one slice of a paginated listing.
type Page[T any] struct {
	Items []T
	Total int64
}

// ListActive delegates to the store: list views are infrequent relative
// to point lookups and are deliberately not cached.
func (s *Service) ListActive(ctx context.Context, cat model.Category, page, pageSize int) *async.Future[Page[model.Punishment]] {
	return async.Go(s.pool, func() (Page[model.Punishment], error) {
		items, total, err := s.store.ListActive(ctx, cat, page, pageSize)
		if err != nil {
			return Page[model.Punishment]{}, s.fail("list_active", err)
		}
		return Page[model.Punishment]{Items: items, Total: total}, nil
	})
}

// ListHistory returns the full punishment history for a target identity,
// newest first.
func (s *Service) ListHistory(ctx context.Context, identity string) *async.Future[[]model.Punishment] {
	return async.Go(s.pool, func() ([]model.Punishment, error) {
		items, err := s.store.ListHistoryForIdentity(ctx, identity)
		if err != nil {
			return nil, s.fail("list_history", err)
		}
		return items, nil
	})
}

// ListIssued returns one page of punishments created by a staff identity.
func (s *Service) ListIssued(ctx context.Context, issuer string, page, pageSize int) *async.Future[Page[model.Punishment]] {
	return async.Go(s.pool, func() (Page[model.Punishment], error) {
		items, total, err := s.store.ListHistoryForIssuer(ctx, issuer, page, pageSize)
		if err != nil {
			return Page[model.Punishment]{}, s.fail("list_issued", err)
		}
		return Page[model.Punishment]{Items: items, Total: total}, nil
	})
}

// CountActive returns the active row count for a category.
func (s *Service) CountActive(ctx context.Context, cat model.Category) *async.Future[int64] {
	return async.Go(s.pool, func() (int64, error) {
		n, err := s.store.CountActive(ctx, cat)
		if err != nil {
			return 0, s.fail("count_active", err)
		}
		return n, nil
	})
}

// TouchPlayer records a join: upserts the player record and its
// name/address history, then refreshes the player cache tier.
func (s *Service) TouchPlayer(ctx context.Context, identity, name, address string) *async.Future[*model.Player] {
	return async.Go(s.pool, func() (*model.Player, error) {
		p, err := s.store.TouchPlayer(ctx, identity, name, address, s.now())
		if err != nil {
			return nil, s.fail("touch_player", err)
		}
		if p != nil {
			s.cache.PutPlayer(p)
		}
		return p, nil
	})
}

// GetPlayer returns the player record, cache-first.
func (s *Service) GetPlayer(ctx context.Context, identity string) *async.Future[*model.Player] {
	if p, ok := s.cache.GetPlayer(identity); ok {
		return async.Resolved(p, nil)
	}
	return async.Go(s.pool, func() (*model.Player, error) {
		p, err := s.store.GetPlayer(ctx, identity)
		if err != nil {
			return nil, s.fail("get_player", err)
		}
		if p != nil {
			s.cache.PutPlayer(p)
		}
		return p, nil
	})
}

// SetAddressBanExempt flips the address-ban exemption for a player.
func (s *Service) SetAddressBanExempt(ctx context.Context, identity string, exempt bool, actorIdentity, actorName string) *async.Future[bool] {
	return async.Go(s.pool, func() (bool, error) {
		if err := s.store.SetAddressBanExempt(ctx, identity, exempt); err != nil {
			return false, s.fail("set_exempt", err)
		}
		s.cache.InvalidatePlayer(identity)
		s.logAction(ctx, actorIdentity, actorName, "player.exempt", identity, map[string]bool{"exempt": exempt})
		return true, nil
	})
}

// AdjustPoints manually changes a player's point score by delta.
func (s *Service) AdjustPoints(ctx context.Context, identity string, delta float64, actorIdentity, actorName string) *async.Future[bool] {
	return async.Go(s.pool, func() (bool, error) {
		if err := s.store.AdjustPoints(ctx, identity, delta); err != nil {
			return false, s.fail("adjust_points", err)
		}
		s.cache.InvalidatePlayer(identity)
		s.logAction(ctx, actorIdentity, actorName, "player.points", identity, map[string]float64{"delta": delta})
		return true, nil
	})
}

// Cooldown reports whether (action, identity) is currently throttled and
// when the throttle lifts.
func (s *Service) Cooldown(action, identity string) (time.Time, bool) {
	return s.cache.Cooldown(action, identity)
}

// StartCooldown throttles (action, identity) for d. Non-positive d is a
// no-op.
func (s *Service) StartCooldown(action, identity string, d time.Duration) {
	if d <= 0 {
		return
	}
	s.cache.SetCooldown(action, identity, d)
}

// findEffective resolves the current effective punishment cache-first,
// falling back to the store.
func (s *Service) findEffective(ctx context.Context, cat model.Category, identity, address string, now time.Time) (*model.Punishment, error) {
	if p, ok := s.cache.Get(cat, cache.ByIdentity, identity); ok && p.EffectiveAt(now) {
		return p, nil
	}
	if p, ok := s.cache.Get(cat, cache.ByAddress, address); ok && p.EffectiveAt(now) {
		return p, nil
	}
	return s.findEffectiveStore(ctx, cat, identity, address, now)
}

// findEffectiveStore queries the store for the current effective
// punishment by identity first, then by address. Rows that are active but
// expired are filtered here.
func (s *Service) findEffectiveStore(ctx context.Context, cat model.Category, identity, address string, now time.Time) (*model.Punishment, error) {
	p, err := s.store.GetEffectiveByIdentity(ctx, identity, cat)
	if err != nil {
		return nil, err
	}
	if p != nil && p.EffectiveAt(now) {
		return p, nil
	}
	p, err = s.store.GetEffectiveByAddress(ctx, address, cat)
	if err != nil {
		return nil, err
	}
	if p != nil && p.EffectiveAt(now) {
		return p, nil
	}
	return nil, nil
}

func (s *Service) addressBanExempt(ctx context.Context, identity string) (bool, error) {
	if p, ok := s.cache.GetPlayer(identity); ok {
		return p.AddressBanExempt, nil
	}
	p, err := s.store.GetPlayer(ctx, identity)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, nil
	}
	s.cache.PutPlayer(p)
	return p.AddressBanExempt, nil
}

func (s *Service) broadcast(ctx context.Context, kind notify.EventKind, p *model.Punishment) {
	if s.notifier == nil {
		return
	}
	ev := &notify.Event{Kind: kind, At: s.now(), Punishment: p}
	if err := s.notifier.Publish(ctx, ev); err != nil {
		s.logger.Warn("punishment broadcast failed",
			zap.String("kind", string(kind)),
			zap.Int64("punishment_id", p.ID),
			zap.Error(err))
	}
}

func (s *Service) logAction(ctx context.Context, actorIdentity, actorName, action, target string, detail interface{}) {
	if s.audit == nil {
		return
	}
	traceID, ip := audit.RequestInfo(ctx)
	s.audit.Log(audit.Entry{
		TraceID:        traceID,
		ActorIdentity:  actorIdentity,
		ActorName:      actorName,
		Action:         action,
		TargetIdentity: target,
		Detail:         detail,
		IP:             ip,
	})
}

// fail logs a store failure and surfaces a generic operation-failed error
// so callers never assume a state change occurred.
func (s *Service) fail(op string, err error) error {
	s.logger.Error("store operation failed", zap.String("op", op), zap.Error(err))
	return err
}
