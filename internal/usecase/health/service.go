package health

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status is the aggregated health.
type Status string

const (
	// Healthy means every probe passed.
	Healthy Status = "ok"
	// Degraded means an optional dependency failed; answers still work.
	Degraded Status = "degraded"
	// Unhealthy means a critical dependency failed; no answer can be produced.
	Unhealthy Status = "error"
)

// CheckResult is one probe outcome.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// DefaultTimeout bounds each probe when New gets a non-positive timeout.
const DefaultTimeout = 3 * time.Second

// Report aggregates probe outcomes by probe name.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Probe checks one dependency.
type Probe struct {
	Name     string
	Critical bool
	Check    func(ctx context.Context) error
}

// LLMProbe is the critical provider probe.
func LLMProbe(llm LLMChecker) Probe {
	return Probe{Name: "llm", Critical: true, Check: llm.HealthCheck}
}

// CacheProbe is the optional embedding cache probe.
func CacheProbe(cache CachePinger) Probe {
	return Probe{Name: "cache", Check: cache.Ping}
}

// OCRProbe is the optional OCR engine probe.
func OCRProbe(engine VersionReporter) Probe {
	return Probe{Name: "ocr", Check: func(ctx context.Context) error {
		_, err := engine.Version(ctx)
		return err
	}}
}

// Service runs the configured probes.
type Service struct {
	timeout time.Duration
	probes  []Probe
}

// New creates a Service. Probes without a Check func are skipped.
func New(timeout time.Duration, probes ...Probe) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	s := &Service{timeout: timeout}
	for _, p := range probes {
		if p.Check != nil {
			s.probes = append(s.probes, p)
		}
	}
	return s
}

// Check runs all probes concurrently, each under its own timeout.
func (s *Service) Check(ctx context.Context) Report {
	failed := make([]bool, len(s.probes))

	var g errgroup.Group
	for i, p := range s.probes {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			failed[i] = p.Check(pctx) != nil
			return nil
		})
	}
	_ = g.Wait()

	r := Report{Status: Healthy, Checks: make(map[string]CheckResult, len(s.probes))}
	for i, p := range s.probes {
		if !failed[i] {
			r.Checks[p.Name] = CheckOK
			continue
		}
		r.Checks[p.Name] = CheckError
		switch {
		case p.Critical:
			r.Status = Unhealthy
		case r.Status == Healthy:
			r.Status = Degraded
		}
	}
	return r
}
