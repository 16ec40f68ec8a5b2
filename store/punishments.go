package store

import (
	"context"
	"errors"
	"time"

	"github.com/kasuganosora/modguard/model"
	"gorm.io/gorm"
)

// Insert writes one punishment row and fills in the store-assigned ID.
// The write is a single-row insert: either the full row commits or the
// error is returned and no row exists.
func (s *Store) Insert(ctx context.Context, p *model.Punishment) error {
	return s.db.WithContext(ctx).Create(p).Error
}

// GetByID returns the punishment with the given ID, or nil when absent.
func (s *Store) GetByID(ctx context.Context, id int64) (*model.Punishment, error) {
	var p model.Punishment
	err := s.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetEffectiveByIdentity returns the most recent active row of the given
// category for the identity, or nil. The caller must still apply the
// time-derived effective check: an active row can be expired.
func (s *Store) GetEffectiveByIdentity(ctx context.Context, identity string, cat model.Category) (*model.Punishment, error) {
	return s.getEffective(ctx, "target_identity = ?", identity, cat)
}

// GetEffectiveByAddress is GetEffectiveByIdentity keyed by network
// address.
func (s *Store) GetEffectiveByAddress(ctx context.Context, address string, cat model.Category) (*model.Punishment, error) {
	return s.getEffective(ctx, "target_address = ?", address, cat)
}

func (s *Store) getEffective(ctx context.Context, keyClause, key string, cat model.Category) (*model.Punishment, error) {
	if key == "" {
		return nil, nil
	}
	var p model.Punishment
	err := s.db.WithContext(ctx).
		Where(keyClause, key).
		Where("type IN ?", model.TypesInCategory(cat)).
		Where("active = ?", true).
		Order("id DESC").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Remove flips the row inactive and records the removal metadata. Returns
// false when no matching active row exists, making double-removal an
// idempotent no-op.
func (s *Store) Remove(ctx context.Context, id int64, removerIdentity, removerName, reason string, at time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&model.Punishment{}).
		Where("id = ? AND active = ?", id, true).
		Updates(map[string]interface{}{
			"active":              false,
			"removed_at":          at,
			"removed_by_identity": removerIdentity,
			"removed_by_name":     removerName,
			"remove_reason":       reason,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListActive returns one page of active rows for the category, newest
// first, plus the total active count. Rows that are active but expired
// are included; the time-derived check is the caller's.
func (s *Store) ListActive(ctx context.Context, cat model.Category, page, pageSize int) ([]model.Punishment, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	q := s.db.WithContext(ctx).
		Model(&model.Punishment{}).
		Where("type IN ?", model.TypesInCategory(cat)).
		Where("active = ?", true)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []model.Punishment
	err := q.Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListHistoryForIdentity returns every punishment ever issued against the
// identity, newest first. Rows are never deleted, so this is the full
// audit trail.
func (s *Store) ListHistoryForIdentity(ctx context.Context, identity string) ([]model.Punishment, error) {
	var items []model.Punishment
	err := s.db.WithContext(ctx).
		Where("target_identity = ?", identity).
		Order("id DESC").
		Find(&items).Error
	return items, err
}

// ListHistoryForIssuer returns one page of punishments issued by the given
// staff identity, newest first, plus the total count.
func (s *Store) ListHistoryForIssuer(ctx context.Context, issuer string, page, pageSize int) ([]model.Punishment, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	q := s.db.WithContext(ctx).
		Model(&model.Punishment{}).
		Where("issuer_identity = ?", issuer)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []model.Punishment
	err := q.Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// CountActive returns the number of active rows in the category.
func (s *Store) CountActive(ctx context.Context, cat model.Category) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&model.Punishment{}).
		Where("type IN ?", model.TypesInCategory(cat)).
		Where("active = ?", true).
		Count(&n).Error
	return n, err
}
