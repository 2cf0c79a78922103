// Package poller reads Modbus registers from field hardware and submits
// them to the telemetry backend as measurements.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dseeg/IoT-Environment/internal/config"
	"github.com/dseeg/IoT-Environment/internal/telemetry"
)

// Sink receives each decoded measurement.
type Sink func(ctx context.Context, m telemetry.Measurement) error

// Manager coordinates running one collector per configured device, with
// a bounded worker pool.
type Manager struct {
	Cfg  config.PollerConfig
	Sink Sink
	Log  zerolog.Logger
}

// Run starts all device collectors and blocks until ctx is done, then
// gives the collectors a short grace period to exit their poll loops.
func (m *Manager) Run(ctx context.Context) error {
	sem := make(chan struct{}, m.Cfg.MaxWorkers)

	var wg sync.WaitGroup

	for _, relay := range m.Cfg.Relays {
		if !relay.Enabled {
			continue
		}
		for _, dev := range relay.Devices {
			collector := &deviceCollector{
				relay:  relay,
				device: dev,
				sink:   m.Sink,
				log:    m.Log,
			}

			wg.Add(1)
			go func(c *deviceCollector) {
				defer wg.Done()
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-ctx.Done():
					return
				}
				if err := c.run(ctx); err != nil {
					m.Log.Error().Err(err).
						Str("relay", c.relay.PhysicalAddress).
						Str("device", c.device.Address).
						Msg("collector stopped")
				}
			}(collector)
		}
	}

	<-ctx.Done()
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		m.Log.Warn().Msg("timeout waiting for collectors to stop")
	}
	return nil
}
