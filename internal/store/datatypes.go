package store

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/dseeg/IoT-Environment/internal/model"
)

// DataTypeByID looks a data type up by its caller-supplied identifier.
func (s *Store) DataTypeByID(ctx context.Context, id uint) (*model.DataType, error) {
	var dt model.DataType
	if err := s.orm.WithContext(ctx).First(&dt, id).Error; err != nil {
		return nil, translate(err)
	}
	return &dt, nil
}

// EnsureDataType guarantees a data type row with the given id exists and
// returns it. Unknown ids get a placeholder row (id only, name and unit
// null). The insert is on-conflict-do-nothing followed by a read, so two
// ingestions racing on a never-seen id both succeed and one placeholder
// row results.
func (s *Store) EnsureDataType(ctx context.Context, id uint) (*model.DataType, error) {
	placeholder := model.DataType{ID: id}
	err := s.orm.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&placeholder).Error
	if err != nil {
		return nil, translate(err)
	}
	return s.DataTypeByID(ctx, id)
}

// SaveDataType persists curated name, description and unit metadata.
func (s *Store) SaveDataType(ctx context.Context, dt *model.DataType) error {
	return translate(s.orm.WithContext(ctx).Save(dt).Error)
}

// CountDataTypes returns the number of data type rows.
func (s *Store) CountDataTypes(ctx context.Context) (int64, error) {
	var count int64
	if err := s.orm.WithContext(ctx).Model(&model.DataType{}).Count(&count).Error; err != nil {
		return 0, translate(err)
	}
	return count, nil
}
