package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// CompanyCounter reports the size of the company reference table.
type CompanyCounter interface {
	Len() int
}

// SystemStatusResponse is the payload of GET /api/system/status.
type SystemStatusResponse struct {
	Status          string  `json:"status"`
	Uptime          string  `json:"uptime"`
	UptimeSeconds   int64   `json:"uptime_seconds"`
	CPUPercent      float64 `json:"cpu_percent"`
	RAMPercent      float64 `json:"ram_percent"`
	DataDir         string  `json:"data_dir"`
	DataDirMB       float64 `json:"data_dir_mb"`
	CachedCompanies int     `json:"cached_companies"`
	CacheFiles      int     `json:"cache_files"`
	KnownCompanies  int     `json:"known_companies"`
}

// SystemHandlers handles system monitoring endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	dataDir     string
	startupTime time.Time
	companies   CompanyCounter
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, dataDir string, companies CompanyCounter) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("component", "system_handlers").Logger(),
		dataDir:     dataDir,
		startupTime: time.Now(),
		companies:   companies,
	}
}

// HandleSystemStatus returns process and cache status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	cpuPercent, ramPercent := h.getSystemStats()
	cache := h.getCacheStats()
	uptime := time.Since(h.startupTime)

	response := SystemStatusResponse{
		Status:          "ok",
		Uptime:          uptime.Round(time.Second).String(),
		UptimeSeconds:   int64(uptime.Seconds()),
		CPUPercent:      cpuPercent,
		RAMPercent:      ramPercent,
		DataDir:         h.dataDir,
		DataDirMB:       float64(cache.bytes) / 1024 / 1024,
		CachedCompanies: cache.companies,
		CacheFiles:      cache.files,
	}
	if h.companies != nil {
		response.KnownCompanies = h.companies.Len()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

type cacheStats struct {
	bytes     int64
	files     int
	companies int
}

// getCacheStats walks the cache root. Each top-level directory is one company.
func (h *SystemHandlers) getCacheStats() cacheStats {
	var stats cacheStats

	err := filepath.Walk(h.dataDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if info.IsDir() {
			if filepath.Dir(path) == filepath.Clean(h.dataDir) {
				stats.companies++
			}
			return nil
		}
		if filepath.Ext(path) == ".csv" {
			stats.files++
		}
		stats.bytes += info.Size()
		return nil
	})

	if err != nil {
		h.log.Warn().Err(err).Str("dir", h.dataDir).Msg("Failed to walk cache directory")
	}

	return stats
}

// getSystemStats calculates CPU and RAM usage percentages
// Uses a short interval (100ms) so the status call stays fast
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
