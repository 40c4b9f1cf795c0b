package collectors

import (
	"context"

	"github.com/breeze-rmm/system-reporter/internal/logging"
)

// StorageCollector reports every mounted partition whose usage is readable.
type StorageCollector struct {
	sys System
}

// NewStorageCollector creates a StorageCollector.
func NewStorageCollector(sys System) *StorageCollector {
	return &StorageCollector{sys: sys}
}

// Collect enumerates partitions and queries usage for each. A partition whose
// usage query fails is dropped without failing the fragment.
func (c *StorageCollector) Collect(ctx context.Context) ([]StorageVolume, error) {
	p := &partial{fragment: FragmentStorage}
	volumes := []StorageVolume{}

	partitions, err := c.sys.Partitions(ctx)
	if err != nil {
		p.add("partitions", err)
		return volumes, p.err()
	}

	for _, part := range partitions {
		usage, err := c.sys.Usage(ctx, part.Mountpoint)
		if err != nil {
			log.Debug("skipping partition without usage",
				"device", part.Device,
				"mountPoint", part.Mountpoint,
				logging.KeyError, err)
			continue
		}

		volumes = append(volumes, StorageVolume{
			Device:     part.Device,
			Type:       part.Fstype,
			Size:       formatGB(usage.Total),
			Used:       formatGB(usage.Used),
			MountPoint: part.Mountpoint,
		})
	}

	return volumes, p.err()
}
