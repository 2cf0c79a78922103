package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dseeg/IoT-Environment/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "iot_test.sqlite")
	st, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func strptr(s string) *string { return &s }

func seedRelay(t *testing.T, st *Store, physical string) *model.Relay {
	t.Helper()
	relay := &model.Relay{
		Name:            "Test Relay",
		PhysicalAddress: physical,
		NetworkAddress:  strptr("127.0.0.1"),
		DateRegistered:  time.Now().UTC(),
	}
	if err := st.CreateRelay(context.Background(), relay); err != nil {
		t.Fatalf("CreateRelay failed: %v", err)
	}
	return relay
}

func seedDevice(t *testing.T, st *Store, relayID uint, address string) *model.Device {
	t.Helper()
	device := &model.Device{
		Name:           "Test Device",
		Address:        address,
		ConnectionType: "I2C",
		DateRegistered: time.Now().UTC(),
		Active:         true,
		RelayID:        relayID,
	}
	if err := st.CreateDevice(context.Background(), device); err != nil {
		t.Fatalf("CreateDevice failed: %v", err)
	}
	return device
}

func TestRelayPhysicalAddressUnique(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)

	seedRelay(t, st, "A1:B2:C3:D4:E5:F6")

	dup := &model.Relay{Name: "Other", PhysicalAddress: "A1:B2:C3:D4:E5:F6"}
	if err := st.CreateRelay(ctx, dup); err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	count, err := st.CountRelays(ctx)
	if err != nil {
		t.Fatalf("CountRelays failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected relay count unchanged at 1, got %d", count)
	}
}

func TestRelayLookups(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)

	relay := seedRelay(t, st, "AA:BB:CC:DD:EE:FF")

	got, err := st.RelayByPhysicalAddress(ctx, "AA:BB:CC:DD:EE:FF")
	if err != nil {
		t.Fatalf("RelayByPhysicalAddress failed: %v", err)
	}
	if got.ID != relay.ID {
		t.Fatalf("expected relay id %d, got %d", relay.ID, got.ID)
	}

	// exact-match, case-sensitive
	if _, err := st.RelayByPhysicalAddress(ctx, "aa:bb:cc:dd:ee:ff"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for case-folded address, got %v", err)
	}

	if _, err := st.RelayByID(ctx, 9999); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestUpdateRelayNetworkAddressOnly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)

	relay := seedRelay(t, st, "11:22:33:44:55:66")

	if err := st.UpdateRelayNetworkAddress(ctx, relay.ID, strptr("192.168.0.1")); err != nil {
		t.Fatalf("UpdateRelayNetworkAddress failed: %v", err)
	}

	got, err := st.RelayByID(ctx, relay.ID)
	if err != nil {
		t.Fatalf("RelayByID failed: %v", err)
	}
	if got.NetworkAddress == nil || *got.NetworkAddress != "192.168.0.1" {
		t.Fatalf("expected network address 192.168.0.1, got %v", got.NetworkAddress)
	}
	if got.Name != relay.Name || got.PhysicalAddress != relay.PhysicalAddress {
		t.Fatalf("expected other relay fields untouched")
	}
}

func TestDeviceAddressUniquePerRelay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)

	relayA := seedRelay(t, st, "0A:00:00:00:00:01")
	relayB := seedRelay(t, st, "0A:00:00:00:00:02")
	seedDevice(t, st, relayA.ID, "/addr/1")

	dup := &model.Device{Name: "Dup", Address: "/addr/1", RelayID: relayA.ID}
	if err := st.CreateDevice(ctx, dup); err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate within one relay, got %v", err)
	}

	// the same address string is allowed on another relay
	other := &model.Device{Name: "Other", Address: "/addr/1", RelayID: relayB.ID}
	if err := st.CreateDevice(ctx, other); err != nil {
		t.Fatalf("expected same address on another relay to succeed: %v", err)
	}
}

func TestDeviceByRelayAndAddress(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)

	relay := seedRelay(t, st, "0B:00:00:00:00:01")
	device := seedDevice(t, st, relay.ID, "/addr/7")

	got, err := st.DeviceByRelayAndAddress(ctx, relay.ID, "/addr/7")
	if err != nil {
		t.Fatalf("DeviceByRelayAndAddress failed: %v", err)
	}
	if got.ID != device.ID {
		t.Fatalf("expected device id %d, got %d", device.ID, got.ID)
	}

	if _, err := st.DeviceByRelayAndAddress(ctx, relay.ID, "/ADDR/7"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for case-folded device address, got %v", err)
	}
	if _, err := st.DeviceByRelayAndAddress(ctx, relay.ID+1, "/addr/7"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on wrong relay, got %v", err)
	}
}

func TestEnsureDataType(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)

	dt, err := st.EnsureDataType(ctx, 7)
	if err != nil {
		t.Fatalf("EnsureDataType failed: %v", err)
	}
	if dt.ID != 7 {
		t.Fatalf("expected data type id 7, got %d", dt.ID)
	}
	if dt.Name != nil || dt.Unit != nil {
		t.Fatalf("expected placeholder with null name and unit")
	}

	// second sight of the same id does not create a duplicate
	if _, err := st.EnsureDataType(ctx, 7); err != nil {
		t.Fatalf("second EnsureDataType failed: %v", err)
	}
	count, err := st.CountDataTypes(ctx)
	if err != nil {
		t.Fatalf("CountDataTypes failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 data type row, got %d", count)
	}

	// curation survives a later ensure
	dt.Name = strptr("Temperature")
	dt.Unit = strptr("C")
	if err := st.SaveDataType(ctx, dt); err != nil {
		t.Fatalf("SaveDataType failed: %v", err)
	}
	got, err := st.EnsureDataType(ctx, 7)
	if err != nil {
		t.Fatalf("EnsureDataType after curation failed: %v", err)
	}
	if got.Name == nil || *got.Name != "Temperature" {
		t.Fatalf("expected curated name to survive, got %v", got.Name)
	}
}

func TestReportQueries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)

	relay := seedRelay(t, st, "0C:00:00:00:00:01")
	device := seedDevice(t, st, relay.ID, "/addr/q")
	dt, err := st.EnsureDataType(ctx, 1)
	if err != nil {
		t.Fatalf("EnsureDataType failed: %v", err)
	}
	dt.Name = strptr("Temperature")
	dt.Unit = strptr("C")
	if err := st.SaveDataType(ctx, dt); err != nil {
		t.Fatalf("SaveDataType failed: %v", err)
	}

	now := time.Now().UTC()
	old := &model.Report{Posted: now.Add(-10 * time.Minute), DeviceID: device.ID, DataTypeID: 1, Value: 20}
	recent := &model.Report{Posted: now.Add(-1 * time.Minute), DeviceID: device.ID, DataTypeID: 1, Value: 21}
	if err := st.CreateReport(ctx, old); err != nil {
		t.Fatalf("CreateReport failed: %v", err)
	}
	if err := st.CreateReport(ctx, recent); err != nil {
		t.Fatalf("CreateReport failed: %v", err)
	}

	rows, err := st.ReportsSince(ctx, now.Add(-5*time.Minute), "")
	if err != nil {
		t.Fatalf("ReportsSince failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected only the recent report in a 5 minute window, got %d rows", len(rows))
	}
	if rows[0].Value != 21 {
		t.Fatalf("expected value 21, got %d", rows[0].Value)
	}
	if rows[0].RelayName != relay.Name || rows[0].DeviceName != device.Name {
		t.Fatalf("expected denormalized relay and device names")
	}
	if rows[0].DataType != "Temperature" || rows[0].DataUnits != "C" {
		t.Fatalf("expected denormalized data type metadata, got %q %q", rows[0].DataType, rows[0].DataUnits)
	}

	// case-insensitive name filter
	rows, err = st.ReportsSince(ctx, now.Add(-15*time.Minute), "temperature")
	if err != nil {
		t.Fatalf("ReportsSince with filter failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected both reports for filter temperature, got %d", len(rows))
	}

	// ordering ascends by posting timestamp
	if !rows[0].Posted.Before(rows[1].Posted) {
		t.Fatalf("expected ascending posting order")
	}

	rows, err = st.ReportsSince(ctx, now.Add(-15*time.Minute), "pressure")
	if err != nil {
		t.Fatalf("ReportsSince with filter failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no reports for filter pressure, got %d", len(rows))
	}

	row, err := st.ReportRowByID(ctx, recent.ID)
	if err != nil {
		t.Fatalf("ReportRowByID failed: %v", err)
	}
	if row.Value != 21 {
		t.Fatalf("expected value 21, got %d", row.Value)
	}
	if _, err := st.ReportRowByID(ctx, 9999); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for unknown report, got %v", err)
	}
}

func TestTransactionRollback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)

	relay := seedRelay(t, st, "0D:00:00:00:00:01")

	wantErr := ErrDuplicate
	err := st.Transaction(ctx, func(tx *Store) error {
		if err := tx.UpdateRelayNetworkAddress(ctx, relay.ID, strptr("10.0.0.9")); err != nil {
			return err
		}
		if _, err := tx.EnsureDataType(ctx, 42); err != nil {
			return err
		}
		return wantErr
	})
	if err != wantErr {
		t.Fatalf("expected transaction error to propagate, got %v", err)
	}

	got, err := st.RelayByID(ctx, relay.ID)
	if err != nil {
		t.Fatalf("RelayByID failed: %v", err)
	}
	if got.NetworkAddress == nil || *got.NetworkAddress != "127.0.0.1" {
		t.Fatalf("expected network address rolled back, got %v", got.NetworkAddress)
	}
	count, err := st.CountDataTypes(ctx)
	if err != nil {
		t.Fatalf("CountDataTypes failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected data type placeholder rolled back, got %d rows", count)
	}
}
