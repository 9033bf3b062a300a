package state

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/airzone-cloud/internal/device"
	"github.com/thatsimonsguy/airzone-cloud/internal/entity"
	"github.com/thatsimonsguy/airzone-cloud/internal/parse"
)

// location is where a device sits in its installation.
type location struct {
	kind   string
	system *int
	zone   *int
}

// Catalog owns every device seen in the cloud responses. It is the single
// writer for its devices; readers go through the same lock.
type Catalog struct {
	mu        sync.RWMutex
	devices   map[string]device.Variant
	locations map[string]location
}

func NewCatalog() *Catalog {
	return &Catalog{
		devices:   map[string]device.Variant{},
		locations: map[string]location{},
	}
}

// Apply routes one device payload. Unknown ids are created from the payload,
// which is then applied as their first update. It reports whether the device
// is new.
func (c *Catalog) Apply(installationID, webserverID string, payload map[string]any) (bool, error) {
	id := parse.Str(payload[device.APIDeviceID])
	if id == nil || *id == "" {
		return false, device.ErrMissingID
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	d, ok := c.devices[*id]
	if !ok {
		created, err := newVariant(installationID, webserverID, payload)
		if err != nil {
			return false, fmt.Errorf("create device %s: %w", *id, err)
		}
		d = created
		c.devices[*id] = d
		c.locations[*id] = locate(payload)
		log.Info().
			Str("device", *id).
			Str("type", c.locations[*id].kind).
			Str("webserver", webserverID).
			Msg("Tracking new device")
	}

	d.UpdateData(entity.NewUpdate(payload))

	if !ok {
		c.link()
	}
	return !ok, nil
}

// SetParam forwards an application write to the device.
func (c *Catalog) SetParam(id, param string, data map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, ok := c.devices[id]
	if !ok {
		return fmt.Errorf("device %s not found", id)
	}
	d.SetParam(param, data)
	return nil
}

// Remove drops a device that is no longer reported, along with any links to it.
func (c *Catalog) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed, ok := c.devices[id]
	if !ok {
		return false
	}
	delete(c.devices, id)
	delete(c.locations, id)

	removedAQ, _ := removed.(*device.AirQuality)
	for _, d := range c.devices {
		switch dev := d.(type) {
		case *device.AirQuality:
			dev.RemoveSystem(id)
			dev.RemoveZone(id)
		case *device.Device:
			if removedAQ != nil && dev.AirQuality() == removedAQ {
				dev.SetAirQuality(nil)
			}
		}
	}
	log.Info().Str("device", id).Msg("Dropped device")
	return true
}

func (c *Catalog) Snapshot(id string) (map[string]any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.devices[id]
	if !ok {
		return nil, false
	}
	return d.Data(), true
}

// Snapshots returns every device snapshot ordered by id.
func (c *Catalog) Snapshots() []map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]map[string]any, 0, len(c.devices))
	for _, id := range c.idsLocked() {
		out = append(out, c.devices[id].Data())
	}
	return out
}

func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.idsLocked()
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.devices)
}

func (c *Catalog) idsLocked() []string {
	ids := make([]string, 0, len(c.devices))
	for id := range c.devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// link associates sensors with the systems and zones sharing their numbers.
func (c *Catalog) link() {
	for _, aqID := range c.idsLocked() {
		aq, ok := c.devices[aqID].(*device.AirQuality)
		if !ok {
			continue
		}
		for _, id := range c.idsLocked() {
			dev, ok := c.devices[id].(*device.Device)
			if !ok {
				continue
			}
			loc := c.locations[id]
			if loc.system == nil || *loc.system != aq.SystemNumber() {
				continue
			}
			switch loc.kind {
			case device.TypeSystem:
				aq.AddSystem(dev)
			case device.TypeZone:
				if loc.zone == nil || *loc.zone != aq.ZoneNumber() {
					continue
				}
				aq.AddZone(dev)
				if dev.AirQuality() == nil {
					dev.SetAirQuality(aq)
					log.Debug().Str("device", id).Str("air_quality", aqID).Msg("Linked air quality sensor")
				}
			}
		}
	}
}

func newVariant(installationID, webserverID string, payload map[string]any) (device.Variant, error) {
	if kind := parse.Str(payload[device.APIType]); kind != nil && *kind == device.TypeAirQuality {
		aq, err := device.NewAirQuality(installationID, webserverID, payload)
		if err != nil {
			return nil, err
		}
		return aq, nil
	}
	d, err := device.New(installationID, webserverID, payload)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func locate(payload map[string]any) location {
	loc := location{}
	if kind := parse.Str(payload[device.APIType]); kind != nil {
		loc.kind = *kind
	}
	sub := device.SubData(payload)
	loc.system = parse.Int(sub[device.APISystemNumber])
	loc.zone = parse.Int(sub[device.APIZoneNumber])
	return loc
}
