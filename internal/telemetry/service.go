package telemetry

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dseeg/IoT-Environment/internal/model"
	"github.com/dseeg/IoT-Environment/internal/store"
)

// Reports posted within the last five minutes are returned when the
// caller does not name a window.
const defaultWindowMinutes = 5

// Service is the telemetry ingestion and reporting engine. It is
// stateless between requests; all durable state lives in the store.
type Service struct {
	store *store.Store
	log   zerolog.Logger
}

func NewService(st *store.Store, log zerolog.Logger) *Service {
	return &Service{store: st, log: log}
}

// Ingest records one measurement: it resolves the relay and device from
// the supplied addresses, self-heals the relay's network address, makes
// sure the data type id exists and appends an immutable report. All
// four steps run in one transaction, so a late write failure leaves no
// partial state behind. The returned report is already denormalized.
func (s *Service) Ingest(ctx context.Context, m Measurement) (*DataReport, error) {
	var out *DataReport
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		relay, err := tx.RelayByPhysicalAddress(ctx, m.RelayPhysicalAddress)
		if errors.Is(err, store.ErrNotFound) {
			return NotFoundf("could not find relay with physical address %s", m.RelayPhysicalAddress)
		}
		if err != nil {
			return err
		}

		device, err := tx.DeviceByRelayAndAddress(ctx, relay.ID, m.DeviceAddress)
		if errors.Is(err, store.ErrNotFound) {
			return NotFoundf("could not find device with address %s on relay %s", m.DeviceAddress, m.RelayPhysicalAddress)
		}
		if err != nil {
			return err
		}

		changed, err := s.reconcileNetworkAddress(ctx, tx, relay, m.RelayNetworkAddress)
		if err != nil {
			return err
		}
		if changed {
			s.log.Info().
				Str("physical_address", relay.PhysicalAddress).
				Str("network_address", m.RelayNetworkAddress).
				Msg("relay network address updated")
		}

		dataType, err := tx.EnsureDataType(ctx, m.DataType)
		if err != nil {
			return err
		}

		report := &model.Report{
			Posted:     time.Now().UTC(),
			DeviceID:   device.ID,
			DataTypeID: dataType.ID,
			Value:      truncateValue(m.Value),
		}
		if err := tx.CreateReport(ctx, report); err != nil {
			return err
		}

		out = &DataReport{
			PostedOn:   report.Posted,
			Value:      report.Value,
			DataType:   derefOrEmpty(dataType.Name),
			DataUnits:  derefOrEmpty(dataType.Unit),
			RelayName:  relay.Name,
			DeviceName: device.Name,
			DeviceType: device.ConnectionType,
		}
		return nil
	})
	if err != nil {
		return nil, s.classify("ingest report", err)
	}
	return out, nil
}

// Reports answers a time-windowed, optionally type-filtered query. Only
// reports posted strictly after now minus lastMinutes are included;
// lastMinutes may be fractional and defaults when zero or negative. The
// type filter matches the data type name case-insensitively and is
// skipped when blank. Results ascend by posting timestamp.
func (s *Service) Reports(ctx context.Context, lastMinutes float64, dataType string) ([]DataReport, error) {
	if lastMinutes <= 0 {
		lastMinutes = defaultWindowMinutes
	}
	cutoff := time.Now().UTC().Add(-time.Duration(lastMinutes * float64(time.Minute)))
	rows, err := s.store.ReportsSince(ctx, cutoff, strings.TrimSpace(dataType))
	if err != nil {
		return nil, s.classify("query reports", err)
	}
	out := make([]DataReport, 0, len(rows))
	for i := range rows {
		out = append(out, fromReportRow(&rows[i]))
	}
	return out, nil
}

// Report returns the denormalized view of a single stored report.
func (s *Service) Report(ctx context.Context, id uint) (*DataReport, error) {
	row, err := s.store.ReportRowByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFoundf("could not find report with id %d", id)
	}
	if err != nil {
		return nil, s.classify("get report", err)
	}
	report := fromReportRow(row)
	return &report, nil
}

// reconcileNetworkAddress overwrites the relay's stored network address
// when the observed one differs, including the absent-vs-present case.
// The mutation is metadata maintenance, not telemetry: no report row is
// produced and concurrent writers race with last-write-wins semantics.
func (s *Service) reconcileNetworkAddress(ctx context.Context, tx *store.Store, relay *model.Relay, observed string) (bool, error) {
	if !networkAddressChanged(relay.NetworkAddress, observed) {
		return false, nil
	}
	addr := networkAddressValue(observed)
	if err := tx.UpdateRelayNetworkAddress(ctx, relay.ID, addr); err != nil {
		return false, err
	}
	relay.NetworkAddress = addr
	return true, nil
}

// classify passes the engine's own taxonomy errors through untouched
// and folds everything else into a generic Unknown error, logging the
// cause for operators.
func (s *Service) classify(op string, err error) error {
	var te *Error
	if errors.As(err, &te) {
		return te
	}
	s.log.Warn().Err(err).Str("op", op).Msg("unexpected persistence failure")
	return Unknown(err)
}

func networkAddressChanged(stored *string, observed string) bool {
	if stored == nil {
		return observed != ""
	}
	return *stored != observed
}

func networkAddressValue(observed string) *string {
	if observed == "" {
		return nil
	}
	return &observed
}

// truncateValue drops the fractional part toward zero: 12.9 stores as
// 12, -12.9 as -12. Sub-unit precision is not retained.
func truncateValue(v float64) int64 {
	return int64(math.Trunc(v))
}

func fromReportRow(row *store.ReportRow) DataReport {
	return DataReport{
		PostedOn:   row.Posted,
		Value:      row.Value,
		DataType:   row.DataType,
		DataUnits:  row.DataUnits,
		RelayName:  row.RelayName,
		DeviceName: row.DeviceName,
		DeviceType: row.DeviceType,
	}
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
