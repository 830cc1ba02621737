// Package health builds the /healthz snapshot of the chat server.
package health

import (
	"runtime"
	"time"
)

// Options describe the server parts a snapshot reports on.
type Options struct {
	Provider       string
	Model          string
	StartedAt      time.Time
	ActiveSessions int
	Now            func() time.Time
}

// Snapshot is the JSON body of /healthz.
type Snapshot struct {
	Status     string      `json:"status"`
	Uptime     string      `json:"uptime,omitempty"`
	Responder  *Responder  `json:"responder,omitempty"`
	Sessions   int         `json:"activeSessions"`
	Goroutines int         `json:"goroutines"`
	Memory     MemoryInfo  `json:"memory"`
	Runtime    RuntimeInfo `json:"runtime"`
	Timestamp  string      `json:"timestamp"`
}

// Responder names the model answering /chat.
type Responder struct {
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
}

// MemoryInfo is a subset of runtime.MemStats in megabytes.
type MemoryInfo struct {
	AllocMB      float64 `json:"allocMB"`
	TotalAllocMB float64 `json:"totalAllocMB"`
	SysMB        float64 `json:"sysMB"`
	NumGC        uint32  `json:"numGC"`
}

// RuntimeInfo describes the Go runtime.
type RuntimeInfo struct {
	Version string `json:"version"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
	CPUs    int    `json:"cpus"`
}

// Collect returns a health snapshot for the current process.
func Collect(opts Options) Snapshot {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	s := Snapshot{
		Status:     "ok",
		Sessions:   opts.ActiveSessions,
		Goroutines: runtime.NumGoroutine(),
		Memory: MemoryInfo{
			AllocMB:      float64(mem.Alloc) / 1024 / 1024,
			TotalAllocMB: float64(mem.TotalAlloc) / 1024 / 1024,
			SysMB:        float64(mem.Sys) / 1024 / 1024,
			NumGC:        mem.NumGC,
		},
		Runtime: RuntimeInfo{
			Version: runtime.Version(),
			OS:      runtime.GOOS,
			Arch:    runtime.GOARCH,
			CPUs:    runtime.NumCPU(),
		},
		Timestamp: now().UTC().Format(time.RFC3339),
	}
	if !opts.StartedAt.IsZero() {
		s.Uptime = now().Sub(opts.StartedAt).Truncate(time.Second).String()
	}
	if opts.Provider != "" {
		s.Responder = &Responder{Provider: opts.Provider, Model: opts.Model}
	}
	return s
}
