package server

import (
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/itemsentinel/internal/database"
	"github.com/aristath/itemsentinel/internal/events"
	"github.com/aristath/itemsentinel/pkg/render"
)

// SystemHandlers serves process and host monitoring endpoints
type SystemHandlers struct {
	databases   map[string]*database.DB
	bus         *events.Bus
	jobs        JobLister
	dataDir     string
	startupTime time.Time
	log         zerolog.Logger
}

// NewSystemHandlers creates system handlers. bus and jobs may be nil.
func NewSystemHandlers(
	databases map[string]*database.DB,
	bus *events.Bus,
	jobs JobLister,
	dataDir string,
	log zerolog.Logger,
) *SystemHandlers {
	return &SystemHandlers{
		databases:   databases,
		bus:         bus,
		jobs:        jobs,
		dataDir:     dataDir,
		startupTime: time.Now(),
		log:         log.With().Str("component", "system_handlers").Logger(),
	}
}

// DiskStatus is the usage of the filesystem holding the data directory
type DiskStatus struct {
	TotalBytes  uint64  `json:"total_bytes" msgpack:"total_bytes"`
	UsedBytes   uint64  `json:"used_bytes" msgpack:"used_bytes"`
	FreeBytes   uint64  `json:"free_bytes" msgpack:"free_bytes"`
	UsedPercent float64 `json:"used_percent" msgpack:"used_percent"`
}

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	Status           string                     `json:"status" msgpack:"status"`
	StartedAt        time.Time                  `json:"started_at" msgpack:"started_at"`
	UptimeSeconds    int64                      `json:"uptime_seconds" msgpack:"uptime_seconds"`
	CPUPercent       float64                    `json:"cpu_percent" msgpack:"cpu_percent"`
	MemoryPercent    float64                    `json:"memory_percent" msgpack:"memory_percent"`
	Disk             *DiskStatus                `json:"disk,omitempty" msgpack:"disk,omitempty"`
	Databases        map[string]*database.Stats `json:"databases" msgpack:"databases"`
	Jobs             []string                   `json:"jobs" msgpack:"jobs"`
	EventSubscribers int                        `json:"event_subscribers" msgpack:"event_subscribers"`
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	response := SystemStatusResponse{
		Status:        "ok",
		StartedAt:     h.startupTime.UTC(),
		UptimeSeconds: int64(time.Since(h.startupTime).Seconds()),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Disk:          h.getDiskStatus(),
		Databases:     h.collectDatabaseStats(),
		Jobs:          []string{},
	}

	if h.jobs != nil {
		response.Jobs = h.jobs.Jobs()
	}
	if h.bus != nil {
		response.EventSubscribers = h.bus.SubscriberCount()
	}

	render.Respond(w, r, http.StatusOK, response, h.log)
}

// HandleDatabaseStats handles GET /api/system/databases
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	render.Respond(w, r, http.StatusOK, map[string]interface{}{
		"databases": h.collectDatabaseStats(),
	}, h.log)
}

func (h *SystemHandlers) collectDatabaseStats() map[string]*database.Stats {
	names := make([]string, 0, len(h.databases))
	for name, db := range h.databases {
		if db != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	stats := make(map[string]*database.Stats, len(names))
	for _, name := range names {
		dbStats, err := h.databases[name].GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", name).Msg("Failed to read database stats")
			continue
		}
		stats[name] = dbStats
	}
	return stats
}

// getSystemStats returns CPU and RAM usage percentages.
// CPU is sampled over 100ms to keep the endpoint responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return cpuAvg, 0
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) getDiskStatus() *DiskStatus {
	if h.dataDir == "" {
		return nil
	}

	usage, err := disk.Usage(h.dataDir)
	if err != nil {
		h.log.Warn().Err(err).Str("dir", h.dataDir).Msg("Failed to get disk usage")
		return nil
	}

	return &DiskStatus{
		TotalBytes:  usage.Total,
		UsedBytes:   usage.Used,
		FreeBytes:   usage.Free,
		UsedPercent: usage.UsedPercent,
	}
}
