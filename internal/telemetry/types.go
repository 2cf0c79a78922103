package telemetry

import "time"

// Measurement is one incoming observation as emitted by a device behind
// a relay. The relay and device are identified by address strings; the
// data type id is chosen by the device. Value may carry sub-unit
// precision but is truncated toward zero when stored.
type Measurement struct {
	RelayPhysicalAddress string  `json:"relayPhysicalAddress"`
	RelayNetworkAddress  string  `json:"relayNetworkAddress"`
	DeviceAddress        string  `json:"deviceAddress"`
	DataType             uint    `json:"dataType"`
	Value                float64 `json:"value"`
}

// DataReport is the denormalized view of one stored report. It carries
// names and units resolved from the directory, never raw foreign keys.
// DataType and DataUnits are empty while the data type is an uncurated
// placeholder.
type DataReport struct {
	PostedOn   time.Time `json:"postedOn"`
	Value      int64     `json:"value"`
	DataType   string    `json:"dataType"`
	DataUnits  string    `json:"dataUnits"`
	RelayName  string    `json:"relayName"`
	DeviceName string    `json:"deviceName"`
	DeviceType string    `json:"deviceType"`
}

// RelayRequest is the payload for relay create and update operations.
type RelayRequest struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	PhysicalAddress string `json:"physicalAddress"`
	NetworkAddress  string `json:"networkAddress"`
}

// DeviceRequest is the payload for device create and update operations.
// The owning relay is identified by physical address; the network
// address observed alongside it feeds relay self-healing.
type DeviceRequest struct {
	ID                   uint   `json:"id"`
	Name                 string `json:"name"`
	Description          string `json:"description"`
	Address              string `json:"address"`
	ConnectionType       string `json:"connectionType"`
	RelayPhysicalAddress string `json:"relayPhysicalAddress"`
	RelayNetworkAddress  string `json:"relayNetworkAddress"`
}
