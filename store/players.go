package store

import (
	"context"
	"errors"
	"time"

	"github.com/kasuganosora/modguard/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetPlayer returns the player record for the identity, or nil.
func (s *Store) GetPlayer(ctx context.Context, identity string) (*model.Player, error) {
	var p model.Player
	err := s.db.WithContext(ctx).Where("identity = ?", identity).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// TouchPlayer upserts the player record on join: creates it with
// first_join on first sight, otherwise refreshes last_name, last_address
// and last_seen. The observed name and address are appended to the
// deduplicated history tables either way.
func (s *Store) TouchPlayer(ctx context.Context, identity, name, address string, at time.Time) (*model.Player, error) {
	db := s.db.WithContext(ctx)

	player := &model.Player{
		Identity:    identity,
		LastName:    name,
		LastAddress: address,
		FirstJoin:   at,
		LastSeen:    at,
	}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "identity"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_name":    name,
			"last_address": address,
			"last_seen":    at,
		}),
	}).Create(player).Error
	if err != nil {
		return nil, err
	}

	if name != "" {
		rec := &model.PlayerName{Identity: identity, Name: name, FirstSeen: at, LastSeen: at}
		err = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "identity"}, {Name: "name"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"last_seen": at}),
		}).Create(rec).Error
		if err != nil {
			return nil, err
		}
	}
	if address != "" {
		rec := &model.PlayerAddress{Identity: identity, Address: address, FirstSeen: at, LastSeen: at}
		err = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "identity"}, {Name: "address"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"last_seen": at}),
		}).Create(rec).Error
		if err != nil {
			return nil, err
		}
	}

	return s.GetPlayer(ctx, identity)
}

// AdjustPoints adds delta (which may be negative) to the player's point
// score, flooring at zero.
func (s *Store) AdjustPoints(ctx context.Context, identity string, delta float64) error {
	return s.db.WithContext(ctx).
		Model(&model.Player{}).
		Where("identity = ?", identity).
		Update("points", gorm.Expr("CASE WHEN points + ? < 0 THEN 0 ELSE points + ? END", delta, delta)).Error
}

// DecayPoints reduces every positive point score by amount, flooring at
// zero. Run periodically by the scheduler.
func (s *Store) DecayPoints(ctx context.Context, amount float64) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&model.Player{}).
		Where("points > 0").
		Update("points", gorm.Expr("CASE WHEN points - ? < 0 THEN 0 ELSE points - ? END", amount, amount))
	return res.RowsAffected, res.Error
}

// SetAddressBanExempt flips the exemption flag that shields shared
// addresses (families, cybercafes) from address bans.
func (s *Store) SetAddressBanExempt(ctx context.Context, identity string, exempt bool) error {
	return s.db.WithContext(ctx).
		Model(&model.Player{}).
		Where("identity = ?", identity).
		Update("address_ban_exempt", exempt).Error
}

// ListNames returns the deduplicated name history for the identity.
func (s *Store) ListNames(ctx context.Context, identity string) ([]model.PlayerName, error) {
	var names []model.PlayerName
	err := s.db.WithContext(ctx).
		Where("identity = ?", identity).
		Order("first_seen ASC").
		Find(&names).Error
	return names, err
}

// ListAddresses returns the deduplicated address history for the identity.
func (s *Store) ListAddresses(ctx context.Context, identity string) ([]model.PlayerAddress, error) {
	var addrs []model.PlayerAddress
	err := s.db.WithContext(ctx).
		Where("identity = ?", identity).
		Order("first_seen ASC").
		Find(&addrs).Error
	return addrs, err
}

// IdentitiesForAddress returns every identity historically seen on the
// address, for alt-account review.
func (s *Store) IdentitiesForAddress(ctx context.Context, address string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&model.PlayerAddress{}).
		Where("address = ?", address).
		Order("identity ASC").
		Pluck("identity", &ids).Error
	return ids, err
}
