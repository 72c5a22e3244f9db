package memory

import (
	"context"
	"sync"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/google/uuid"
)

// DriverDirectory is a read model of the external user directory.
type DriverDirectory struct {
	mu      sync.RWMutex
	drivers map[uuid.UUID]models.DriverProfile
}

func NewDriverDirectory(profiles ...models.DriverProfile) *DriverDirectory {
	d := &DriverDirectory{drivers: make(map[uuid.UUID]models.DriverProfile, len(profiles))}
	for _, p := range profiles {
		d.drivers[p.ID] = p
	}
	return d
}

// Put adds or replaces a driver profile.
func (d *DriverDirectory) Put(profile models.DriverProfile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drivers[profile.ID] = profile
}

func (d *DriverDirectory) Drivers(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.DriverProfile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[uuid.UUID]models.DriverProfile, len(ids))
	for _, id := range ids {
		if p, ok := d.drivers[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (d *DriverDirectory) GetDriver(_ context.Context, id uuid.UUID) (models.DriverProfile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.drivers[id]
	if !ok {
		return models.DriverProfile{}, types.ErrDriverNotFound
	}
	return p, nil
}
