package store

import (
	"context"
	"errors"
	"time"

	"github.com/kasuganosora/modguard/model"
	"gorm.io/gorm"
)

// AddNote records a staff annotation against a player.
func (s *Store) AddNote(ctx context.Context, n *model.Note) error {
	return s.db.WithContext(ctx).Create(n).Error
}

// ListNotes returns all notes on the identity, newest first.
func (s *Store) ListNotes(ctx context.Context, identity string) ([]model.Note, error) {
	var notes []model.Note
	err := s.db.WithContext(ctx).
		Where("target_identity = ?", identity).
		Order("id DESC").
		Find(&notes).Error
	return notes, err
}

// DeleteNote removes a note by ID; false when it did not exist.
func (s *Store) DeleteNote(ctx context.Context, id int64) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&model.Note{}, id)
	return res.RowsAffected > 0, res.Error
}

// CreateReport files a report in pending state.
func (s *Store) CreateReport(ctx context.Context, r *model.Report) error {
	r.Status = model.StatusPending
	return s.db.WithContext(ctx).Create(r).Error
}

// ListReports returns one page of reports in the given status, newest
// first, plus the total count.
func (s *Store) ListReports(ctx context.Context, status model.Status, page, pageSize int) ([]model.Report, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	q := s.db.WithContext(ctx).Model(&model.Report{}).Where("status = ?", status)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []model.Report
	err := q.Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

// ResolveReport moves a pending report to its terminal status. Returns
// false when the report is missing or already resolved.
func (s *Store) ResolveReport(ctx context.Context, id int64, status model.Status, resolver string, at time.Time) (bool, error) {
	if status != model.StatusAccepted && status != model.StatusDenied && status != model.StatusResolved {
		return false, errors.New("store: invalid report resolution status")
	}
	res := s.db.WithContext(ctx).
		Model(&model.Report{}).
		Where("id = ? AND status = ?", id, model.StatusPending).
		Updates(map[string]interface{}{
			"status":      status,
			"resolved_at": at,
			"resolved_by": resolver,
		})
	return res.RowsAffected > 0, res.Error
}

// CreateAppeal files an appeal against an existing punishment. The
// punishment must exist; appeals against unknown rows are rejected.
func (s *Store) CreateAppeal(ctx context.Context, a *model.Appeal) error {
	p, err := s.GetByID(ctx, a.PunishmentID)
	if err != nil {
		return err
	}
	if p == nil {
		return gorm.ErrRecordNotFound
	}
	a.Status = model.StatusPending
	return s.db.WithContext(ctx).Create(a).Error
}

// ListAppeals returns one page of appeals in the given status, newest
// first, plus the total count.
func (s *Store) ListAppeals(ctx context.Context, status model.Status, page, pageSize int) ([]model.Appeal, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	q := s.db.WithContext(ctx).Model(&model.Appeal{}).Where("status = ?", status)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []model.Appeal
	err := q.Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

// DecideAppeal moves a pending appeal to accepted or denied. Returns false
// when the appeal is missing or already decided.
func (s *Store) DecideAppeal(ctx context.Context, id int64, status model.Status, decider, reason string, at time.Time) (bool, error) {
	if status != model.StatusAccepted && status != model.StatusDenied {
		return false, errors.New("store: invalid appeal decision status")
	}
	res := s.db.WithContext(ctx).
		Model(&model.Appeal{}).
		Where("id = ? AND status = ?", id, model.StatusPending).
		Updates(map[string]interface{}{
			"status":          status,
			"decided_at":      at,
			"decided_by":      decider,
			"decision_reason": reason,
		})
	return res.RowsAffected > 0, res.Error
}

// GetAppeal returns an appeal by ID, or nil.
func (s *Store) GetAppeal(ctx context.Context, id int64) (*model.Appeal, error) {
	var a model.Appeal
	err := s.db.WithContext(ctx).First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
