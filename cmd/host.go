package cmd

import (
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"go.uber.org/zap"
)

// bytesPerPhoton approximates the memory held by one indexed photon: the
// Photon value, its index entry and the snapshot slice header share
const bytesPerPhoton = 128

// estimateFootprint returns the approximate bytes needed for a map of n photons
func estimateFootprint(n int) uint64 {
	if n <= 0 {
		return 0
	}
	return uint64(n) * bytesPerPhoton
}

// logHostInfo reports the CPU count and memory headroom before a build and
// warns when the photon map may not fit in available memory
func logHostInfo(log *zap.Logger, photons int) {
	logical, err := cpu.Counts(true)
	if err != nil {
		log.Warn("Could not count CPUs", zap.Error(err))
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		log.Warn("Could not read memory statistics", zap.Error(err))
		return
	}

	need := estimateFootprint(photons)
	log.Info("Host resources",
		zap.Int("cpus", logical),
		zap.Uint64("total_mb", vm.Total>>20),
		zap.Uint64("available_mb", vm.Available>>20),
		zap.Int("planned_photons", photons),
		zap.Uint64("estimated_mb", need>>20))

	if need > vm.Available {
		log.Warn("Photon map may exceed available memory; lower the emission intensity",
			zap.Uint64("estimated_mb", need>>20),
			zap.Uint64("available_mb", vm.Available>>20))
	}
}
