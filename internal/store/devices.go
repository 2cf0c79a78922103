package store

import (
	"context"

	"github.com/dseeg/IoT-Environment/internal/model"
)

// ListDevices returns all devices ordered by id. When relayID is
// non-zero only devices owned by that relay are returned.
func (s *Store) ListDevices(ctx context.Context, relayID uint) ([]model.Device, error) {
	q := s.orm.WithContext(ctx).Order("id")
	if relayID != 0 {
		q = q.Where("relay_id = ?", relayID)
	}
	var devices []model.Device
	if err := q.Find(&devices).Error; err != nil {
		return nil, translate(err)
	}
	return devices, nil
}

// DeviceByID looks a device up by its identifier.
func (s *Store) DeviceByID(ctx context.Context, id uint) (*model.Device, error) {
	var device model.Device
	if err := s.orm.WithContext(ctx).First(&device, id).Error; err != nil {
		return nil, translate(err)
	}
	return &device, nil
}

// DeviceByRelayAndAddress resolves the device with the given address on
// the given relay. The address match is exact and case-sensitive.
func (s *Store) DeviceByRelayAndAddress(ctx context.Context, relayID uint, address string) (*model.Device, error) {
	var device model.Device
	err := s.orm.WithContext(ctx).
		Where("relay_id = ? AND address = ?", relayID, address).
		First(&device).Error
	if err != nil {
		return nil, translate(err)
	}
	return &device, nil
}

// CreateDevice inserts a new device. A duplicate address within the
// owning relay's device set yields ErrDuplicate.
func (s *Store) CreateDevice(ctx context.Context, device *model.Device) error {
	return translate(s.orm.WithContext(ctx).Create(device).Error)
}

// SaveDevice persists every field of an existing device row.
func (s *Store) SaveDevice(ctx context.Context, device *model.Device) error {
	return translate(s.orm.WithContext(ctx).Save(device).Error)
}

// DeleteDevice removes a device by id.
func (s *Store) DeleteDevice(ctx context.Context, id uint) error {
	return translate(s.orm.WithContext(ctx).Delete(&model.Device{}, id).Error)
}
