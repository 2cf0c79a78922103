package poller

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	mb "github.com/goburrow/modbus"
	"github.com/rs/zerolog"

	"github.com/dseeg/IoT-Environment/internal/config"
	"github.com/dseeg/IoT-Environment/internal/telemetry"
)

// deviceCollector polls the registers of a single device behind one
// Modbus TCP relay.
type deviceCollector struct {
	relay  config.RelayPoll
	device config.DevicePoll
	sink   Sink
	log    zerolog.Logger

	handler *mb.TCPClientHandler
}

func (c *deviceCollector) run(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", c.relay.Host, c.relay.Port)
	h := mb.NewTCPClientHandler(address)
	if c.relay.Timeout > 0 {
		h.Timeout = c.relay.Timeout
	}
	h.SlaveId = c.device.SlaveID
	c.handler = h

	// initial connect with simple retries
	retry := c.relay.RetryCount
	if retry < 0 {
		retry = 0
	}
	for attempts := 0; attempts <= retry; attempts++ {
		if err := h.Connect(); err != nil {
			if attempts == retry {
				return fmt.Errorf("connect %s: %w", address, err)
			}
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		break
	}
	defer h.Close()

	client := mb.NewClient(h)

	interval := c.device.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := c.pollOnce(ctx, client); err != nil {
		c.log.Warn().Err(err).
			Str("relay", c.relay.PhysicalAddress).
			Str("device", c.device.Address).
			Msg("initial poll failed")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := c.pollOnce(ctx, client); err != nil {
				c.log.Warn().Err(err).
					Str("relay", c.relay.PhysicalAddress).
					Str("device", c.device.Address).
					Msg("poll failed")
			}
		}
	}
}

func (c *deviceCollector) pollOnce(ctx context.Context, client mb.Client) error {
	for _, p := range c.device.Points {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		value, err := c.readPoint(client, p)
		if err != nil {
			// one reconnect attempt before giving up on this cycle
			if recErr := c.reconnect(); recErr == nil {
				value, err = c.readPoint(client, p)
			}
			if err != nil {
				return fmt.Errorf("read register %d: %w", p.Register, err)
			}
		}

		m := telemetry.Measurement{
			RelayPhysicalAddress: c.relay.PhysicalAddress,
			RelayNetworkAddress:  c.relay.NetworkAddress,
			DeviceAddress:        c.device.Address,
			DataType:             p.DataType,
			Value:                value,
		}
		if err := c.sink(ctx, m); err != nil {
			c.log.Warn().Err(err).
				Str("device", c.device.Address).
				Uint("data_type", p.DataType).
				Msg("measurement rejected")
		}
	}
	return nil
}

func (c *deviceCollector) readPoint(client mb.Client, p config.PointPoll) (float64, error) {
	qty := uint16(1)
	if strings.EqualFold(p.Encoding, "float32") {
		qty = 2
	}

	var data []byte
	var err error
	switch strings.ToLower(p.RegisterType) {
	case "", "holding":
		data, err = client.ReadHoldingRegisters(p.Register, qty)
	case "input":
		data, err = client.ReadInputRegisters(p.Register, qty)
	default:
		return 0, fmt.Errorf("unsupported register type: %s", p.RegisterType)
	}
	if err != nil {
		return 0, err
	}
	return decodeRegisters(data, p)
}

// decodeRegisters interprets raw register bytes per the point's encoding
// and applies its scale and offset.
func decodeRegisters(data []byte, p config.PointPoll) (float64, error) {
	scale := p.Scale
	if scale == 0 {
		scale = 1
	}
	apply := func(v float64) float64 { return v*scale + p.Offset }

	switch strings.ToLower(p.Encoding) {
	case "", "uint16":
		if len(data) < 2 {
			return 0, errors.New("insufficient data for uint16")
		}
		return apply(float64(binary.BigEndian.Uint16(data[:2]))), nil
	case "int16":
		if len(data) < 2 {
			return 0, errors.New("insufficient data for int16")
		}
		return apply(float64(int16(binary.BigEndian.Uint16(data[:2])))), nil
	case "float32":
		if len(data) < 4 {
			return 0, errors.New("insufficient data for float32")
		}
		u := binary.BigEndian.Uint32(orderWords(data[:4], p.ByteOrder))
		return apply(float64(math.Float32frombits(u))), nil
	default:
		return 0, fmt.Errorf("unsupported encoding: %s", p.Encoding)
	}
}

// orderWords reorders a 4-byte register pair. ABCD is the wire order;
// CDAB swaps the two 16-bit words.
func orderWords(in []byte, order string) []byte {
	if strings.ToUpper(strings.TrimSpace(order)) == "CDAB" {
		return []byte{in[2], in[3], in[0], in[1]}
	}
	return in
}

func (c *deviceCollector) reconnect() error {
	if c.handler == nil {
		return errors.New("no handler")
	}
	c.handler.Close()
	time.Sleep(200 * time.Millisecond)
	return c.handler.Connect()
}
