package model

import "time"

// Relay represents a physical network bridge hosting one or more devices.
// The physical address is a stable hardware identifier and is unique across
// all relays; the network address is whatever the relay was last reachable
// at and may be absent until the relay reports in.
type Relay struct {
	ID              uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name            string    `gorm:"column:name;size:50;not null" json:"name"`
	Description     string    `gorm:"column:description;size:2000" json:"description"`
	PhysicalAddress string    `gorm:"column:physical_address;size:50;not null;uniqueIndex:uq_relays_physical_address" json:"physicalAddress"`
	NetworkAddress  *string   `gorm:"column:network_address;size:50" json:"networkAddress"`
	DateRegistered  time.Time `gorm:"column:date_registered" json:"dateRegistered"`
	Stale           bool      `gorm:"column:stale;default:false" json:"stale"`

	Devices []Device `gorm:"foreignKey:RelayID;references:ID" json:"-"`
}

func (Relay) TableName() string { return "relays" }

// Device represents a telemetry source attached to exactly one relay.
// Its address is only unique within the owning relay's device set; the same
// address string may repeat on a different relay.
type Device struct {
	ID             uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name           string    `gorm:"column:name;size:50;not null" json:"name"`
	Description    string    `gorm:"column:description;size:2000" json:"description"`
	Address        string    `gorm:"column:address;size:100;not null;uniqueIndex:uq_devices_relay_address" json:"address"`
	ConnectionType string    `gorm:"column:connection_type;size:50;default:Unknown" json:"connectionType"`
	DateRegistered time.Time `gorm:"column:date_registered" json:"dateRegistered"`
	Active         bool      `gorm:"column:active;default:true" json:"active"`
	RelayID        uint      `gorm:"column:relay_id;not null;uniqueIndex:uq_devices_relay_address" json:"relayId"`

	Relay   Relay    `gorm:"foreignKey:RelayID;references:ID" json:"-"`
	Reports []Report `gorm:"foreignKey:DeviceID;references:ID" json:"-"`
}

func (Device) TableName() string { return "devices" }

// DataType is a measurement category. Its id is chosen by the emitting
// device, never generated by the server, and the row may exist in a
// placeholder state (id only) until an administrator curates name and unit.
type DataType struct {
	ID          uint    `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Name        *string `gorm:"column:name;size:50" json:"name"`
	Description *string `gorm:"column:description;size:2000" json:"description"`
	Unit        *string `gorm:"column:unit;size:20" json:"unit"`

	Reports []Report `gorm:"foreignKey:DataTypeID;references:ID" json:"-"`
}

func (DataType) TableName() string { return "data_types" }

// Report is one immutable observation. Posted is assigned by the server at
// ingestion time and the value is stored at integer precision.
type Report struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Posted     time.Time `gorm:"column:posted;index" json:"posted"`
	DeviceID   uint      `gorm:"column:device_id;not null;index" json:"deviceId"`
	DataTypeID uint      `gorm:"column:data_type_id;not null" json:"dataTypeId"`
	Value      int64     `gorm:"column:value" json:"value"`

	Device   Device   `gorm:"foreignKey:DeviceID;references:ID" json:"-"`
	DataType DataType `gorm:"foreignKey:DataTypeID;references:ID" json:"-"`
}

func (Report) TableName() string { return "reports" }
