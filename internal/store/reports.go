package store

import (
	"context"
	"time"

	"github.com/dseeg/IoT-Environment/internal/model"
)

// ReportRow is one denormalized query result joining a report with its
// device, owning relay and data type. It is computed at query time and
// never persisted, so directory edits show up in later queries.
type ReportRow struct {
	DataType   string    `json:"data_type"`
	DataUnits  string    `json:"data_units"`
	DeviceName string    `json:"device_name"`
	DeviceType string    `json:"device_type"`
	RelayName  string    `json:"relay_name"`
	Posted     time.Time `json:"posted"`
	Value      int64     `json:"value"`
}

const reportColumns = `COALESCE(dt.name, '') AS data_type,
COALESCE(dt.unit, '') AS data_units,
d.name AS device_name,
d.connection_type AS device_type,
rl.name AS relay_name,
r.posted AS posted,
r.value AS value`

// CreateReport appends one immutable report row.
func (s *Store) CreateReport(ctx context.Context, report *model.Report) error {
	return translate(s.orm.WithContext(ctx).Create(report).Error)
}

// ReportsSince returns denormalized rows for all reports posted strictly
// after cutoff, ascending by posting timestamp. A non-blank dataTypeName
// restricts the result to reports whose data type name matches it
// case-insensitively.
func (s *Store) ReportsSince(ctx context.Context, cutoff time.Time, dataTypeName string) ([]ReportRow, error) {
	q := s.orm.WithContext(ctx).
		Table("reports AS r").
		Select(reportColumns).
		Joins("JOIN devices d ON d.id = r.device_id").
		Joins("JOIN relays rl ON rl.id = d.relay_id").
		Joins("JOIN data_types dt ON dt.id = r.data_type_id").
		Where("r.posted > ?", cutoff).
		Order("r.posted ASC")
	if dataTypeName != "" {
		q = q.Where("LOWER(dt.name) = LOWER(?)", dataTypeName)
	}
	var rows []ReportRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

// ReportRowByID returns the denormalized view of a single report.
func (s *Store) ReportRowByID(ctx context.Context, id uint) (*ReportRow, error) {
	var rows []ReportRow
	err := s.orm.WithContext(ctx).
		Table("reports AS r").
		Select(reportColumns).
		Joins("JOIN devices d ON d.id = r.device_id").
		Joins("JOIN relays rl ON rl.id = d.relay_id").
		Joins("JOIN data_types dt ON dt.id = r.data_type_id").
		Where("r.id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// CountReports returns the number of report rows.
func (s *Store) CountReports(ctx context.Context) (int64, error) {
	var count int64
	if err := s.orm.WithContext(ctx).Model(&model.Report{}).Count(&count).Error; err != nil {
		return 0, translate(err)
	}
	return count, nil
}
