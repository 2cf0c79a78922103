package store

import (
	"context"

	"github.com/dseeg/IoT-Environment/internal/model"
)

// ListRelays returns all relays ordered by id.
func (s *Store) ListRelays(ctx context.Context) ([]model.Relay, error) {
	var relays []model.Relay
	if err := s.orm.WithContext(ctx).Order("id").Find(&relays).Error; err != nil {
		return nil, translate(err)
	}
	return relays, nil
}

// RelayByID looks a relay up by its identifier.
func (s *Store) RelayByID(ctx context.Context, id uint) (*model.Relay, error) {
	var relay model.Relay
	if err := s.orm.WithContext(ctx).First(&relay, id).Error; err != nil {
		return nil, translate(err)
	}
	return &relay, nil
}

// RelayByPhysicalAddress looks a relay up by its physical address.
// The match is exact and case-sensitive.
func (s *Store) RelayByPhysicalAddress(ctx context.Context, physicalAddress string) (*model.Relay, error) {
	var relay model.Relay
	err := s.orm.WithContext(ctx).
		Where("physical_address = ?", physicalAddress).
		First(&relay).Error
	if err != nil {
		return nil, translate(err)
	}
	return &relay, nil
}

// RelayExists reports whether a relay with the given physical address
// is already registered.
func (s *Store) RelayExists(ctx context.Context, physicalAddress string) (bool, error) {
	var count int64
	err := s.orm.WithContext(ctx).
		Model(&model.Relay{}).
		Where("physical_address = ?", physicalAddress).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

// CreateRelay inserts a new relay. A duplicate physical address yields
// ErrDuplicate.
func (s *Store) CreateRelay(ctx context.Context, relay *model.Relay) error {
	return translate(s.orm.WithContext(ctx).Create(relay).Error)
}

// SaveRelay persists every field of an existing relay row.
func (s *Store) SaveRelay(ctx context.Context, relay *model.Relay) error {
	return translate(s.orm.WithContext(ctx).Save(relay).Error)
}

// UpdateRelayNetworkAddress overwrites only the network address column
// of one relay. It is the single-row write behind network self-healing;
// concurrent callers race with plain last-write-wins semantics.
func (s *Store) UpdateRelayNetworkAddress(ctx context.Context, id uint, networkAddress *string) error {
	err := s.orm.WithContext(ctx).
		Model(&model.Relay{}).
		Where("id = ?", id).
		Update("network_address", networkAddress).Error
	return translate(err)
}

// DeleteRelay removes a relay by id.
func (s *Store) DeleteRelay(ctx context.Context, id uint) error {
	return translate(s.orm.WithContext(ctx).Delete(&model.Relay{}, id).Error)
}

// CountRelays returns the number of registered relays.
func (s *Store) CountRelays(ctx context.Context) (int64, error) {
	var count int64
	if err := s.orm.WithContext(ctx).Model(&model.Relay{}).Count(&count).Error; err != nil {
		return 0, translate(err)
	}
	return count, nil
}
