// licita/pkg/server/stats.go

package server

import (
	"sync/atomic"
	"time"

	"rgehrsitz/licita/pkg/analyzer"
)

type lastAnalysis struct {
	score     int
	semaphore analyzer.Semaphore
	at        time.Time
}

// Stats counts the work served since start. Safe for concurrent use.
type Stats struct {
	analyses  atomic.Int64
	extracted atomic.Int64
	exports   atomic.Int64
	last      atomic.Pointer[lastAnalysis]
	started   time.Time
}

func NewStats() *Stats {
	return &Stats{started: time.Now()}
}

type StatsSnapshot struct {
	AnalysesServed     int64              `json:"analysesServed"`
	DocumentsExtracted int64              `json:"documentsExtracted"`
	Exports            int64              `json:"exports"`
	LastScore          *int               `json:"lastScore"`
	LastSemaphore      analyzer.Semaphore `json:"lastSemaphore,omitempty"`
	LastAnalysisTime   *time.Time         `json:"lastAnalysisTime,omitempty"`
	UptimeSeconds      int64              `json:"uptimeSeconds"`
}

func (s *Stats) RecordAnalysis(report analyzer.Report) {
	s.analyses.Add(1)
	s.last.Store(&lastAnalysis{score: report.Score, semaphore: report.Semaphore(), at: time.Now()})
}

func (s *Stats) RecordExtraction() {
	s.extracted.Add(1)
}

func (s *Stats) RecordExport() {
	s.exports.Add(1)
}

func (s *Stats) Snapshot() StatsSnapshot {
	snap := StatsSnapshot{
		AnalysesServed:     s.analyses.Load(),
		DocumentsExtracted: s.extracted.Load(),
		Exports:            s.exports.Load(),
		UptimeSeconds:      int64(time.Since(s.started).Seconds()),
	}
	if last := s.last.Load(); last != nil {
		score, at := last.score, last.at
		snap.LastScore = &score
		snap.LastSemaphore = last.semaphore
		snap.LastAnalysisTime = &at
	}
	return snap
}
