package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/dseeg/IoT-Environment/internal/model"
	"github.com/dseeg/IoT-Environment/internal/store"
)

// Directory operations: plain create/read/update/delete on the relay
// and device records the ingestion core resolves against.

// Relays returns all registered relays.
func (s *Service) Relays(ctx context.Context) ([]model.Relay, error) {
	relays, err := s.store.ListRelays(ctx)
	if err != nil {
		return nil, s.classify("list relays", err)
	}
	return relays, nil
}

// Relay returns one relay by id.
func (s *Service) Relay(ctx context.Context, id uint) (*model.Relay, error) {
	relay, err := s.store.RelayByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFoundf("could not find relay with id %d", id)
	}
	if err != nil {
		return nil, s.classify("get relay", err)
	}
	return relay, nil
}

// CreateRelay registers a new relay. The physical address must not be
// in use by any other relay.
func (s *Service) CreateRelay(ctx context.Context, req RelayRequest) (*model.Relay, error) {
	exists, err := s.store.RelayExists(ctx, req.PhysicalAddress)
	if err != nil {
		return nil, s.classify("create relay", err)
	}
	if exists {
		return nil, Conflictf("relay with physical address %s already exists", req.PhysicalAddress)
	}

	relay := &model.Relay{
		Name:            req.Name,
		Description:     req.Description,
		PhysicalAddress: req.PhysicalAddress,
		NetworkAddress:  networkAddressValue(req.NetworkAddress),
		DateRegistered:  time.Now().UTC(),
		Stale:           false,
	}
	if err := s.store.CreateRelay(ctx, relay); err != nil {
		// The unique index is the arbiter when two registrations race
		// past the existence check.
		if errors.Is(err, store.ErrDuplicate) {
			return nil, Conflictf("relay with physical address %s already exists", req.PhysicalAddress)
		}
		return nil, s.classify("create relay", err)
	}
	return relay, nil
}

// UpdateRelay replaces a relay's descriptive fields and addresses. The
// path id and payload id must agree; a mismatch is rejected before any
// lookup.
func (s *Service) UpdateRelay(ctx context.Context, id uint, req RelayRequest) error {
	if id != req.ID {
		return Invalidf("request id mismatch: %d, %d", id, req.ID)
	}
	relay, err := s.store.RelayByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return NotFoundf("could not find relay with id %d", id)
	}
	if err != nil {
		return s.classify("update relay", err)
	}

	relay.Name = req.Name
	relay.Description = req.Description
	relay.NetworkAddress = networkAddressValue(req.NetworkAddress)
	relay.PhysicalAddress = req.PhysicalAddress

	if err := s.store.SaveRelay(ctx, relay); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return Conflictf("relay with physical address %s already exists", req.PhysicalAddress)
		}
		return s.classify("update relay", err)
	}
	return nil
}

// DeleteRelay removes a relay by id.
func (s *Service) DeleteRelay(ctx context.Context, id uint) error {
	if _, err := s.Relay(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteRelay(ctx, id); err != nil {
		return s.classify("delete relay", err)
	}
	return nil
}

// Devices returns all registered devices.
func (s *Service) Devices(ctx context.Context) ([]model.Device, error) {
	devices, err := s.store.ListDevices(ctx, 0)
	if err != nil {
		return nil, s.classify("list devices", err)
	}
	return devices, nil
}

// Device returns one device by id.
func (s *Service) Device(ctx context.Context, id uint) (*model.Device, error) {
	device, err := s.store.DeviceByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFoundf("could not find device with id %d", id)
	}
	if err != nil {
		return nil, s.classify("get device", err)
	}
	return device, nil
}

// CreateDevice registers a new device on the relay identified by the
// request's physical address, self-healing that relay's network address
// as a side effect. The device address must be unused within the owning
// relay's device set.
func (s *Service) CreateDevice(ctx context.Context, req DeviceRequest) (*model.Device, error) {
	var device *model.Device
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		relay, err := tx.RelayByPhysicalAddress(ctx, req.RelayPhysicalAddress)
		if errors.Is(err, store.ErrNotFound) {
			return NotFoundf("could not find relay with physical address %s", req.RelayPhysicalAddress)
		}
		if err != nil {
			return err
		}

		if _, err := tx.DeviceByRelayAndAddress(ctx, relay.ID, req.Address); err == nil {
			return Conflictf("device with address %s already exists on relay %s", req.Address, relay.PhysicalAddress)
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if _, err := s.reconcileNetworkAddress(ctx, tx, relay, req.RelayNetworkAddress); err != nil {
			return err
		}

		device = &model.Device{
			Name:           req.Name,
			Description:    req.Description,
			Address:        req.Address,
			ConnectionType: req.ConnectionType,
			DateRegistered: time.Now().UTC(),
			Active:         true,
			RelayID:        relay.ID,
		}
		if err := tx.CreateDevice(ctx, device); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return Conflictf("device with address %s already exists on relay %s", req.Address, relay.PhysicalAddress)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, s.classify("create device", err)
	}
	return device, nil
}

// UpdateDevice replaces a device's descriptive fields and re-resolves
// its owning relay, self-healing that relay's network address. A path
// and payload id mismatch is rejected before any lookup.
func (s *Service) UpdateDevice(ctx context.Context, id uint, req DeviceRequest) error {
	if id != req.ID {
		return Invalidf("request id mismatch: %d, %d", id, req.ID)
	}
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		relay, err := tx.RelayByPhysicalAddress(ctx, req.RelayPhysicalAddress)
		if errors.Is(err, store.ErrNotFound) {
			return NotFoundf("could not find relay with physical address %s", req.RelayPhysicalAddress)
		}
		if err != nil {
			return err
		}

		device, err := tx.DeviceByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return NotFoundf("could not find device with id %d", id)
		}
		if err != nil {
			return err
		}

		if _, err := s.reconcileNetworkAddress(ctx, tx, relay, req.RelayNetworkAddress); err != nil {
			return err
		}

		device.Name = req.Name
		device.Description = req.Description
		device.Address = req.Address
		device.ConnectionType = req.ConnectionType
		device.RelayID = relay.ID

		if err := tx.SaveDevice(ctx, device); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return Conflictf("device with address %s already exists on relay %s", req.Address, relay.PhysicalAddress)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return s.classify("update device", err)
	}
	return nil
}

// DeleteDevice removes a device by id.
func (s *Service) DeleteDevice(ctx context.Context, id uint) error {
	if _, err := s.Device(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteDevice(ctx, id); err != nil {
		return s.classify("delete device", err)
	}
	return nil
}
