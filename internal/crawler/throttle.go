package crawler

import "github.com/nao1215/crawler/internal/model"

// HostThrottle bounds the number of in-flight tasks per host.
//
// The ceiling is a hard cap: TryAdmit denies once the in-flight count equals
// the ceiling, so the count never exceeds it. Not safe for concurrent use.
type HostThrottle struct {
	ceiling  int
	inFlight map[model.Host]int
	peak     map[model.Host]int
}

// NewHostThrottle returns a throttle admitting at most ceiling tasks per host.
// A ceiling below 1 is raised to 1.
func NewHostThrottle(ceiling int) *HostThrottle {
	return &HostThrottle{
		ceiling:  max(ceiling, 1),
		inFlight: make(map[model.Host]int),
		peak:     make(map[model.Host]int),
	}
}

// Ceiling returns the per-host limit.
func (t *HostThrottle) Ceiling() int {
	return t.ceiling
}

// TryAdmit takes one slot for host, or reports false when host is saturated.
func (t *HostThrottle) TryAdmit(host model.Host) bool {
	n := t.inFlight[host]
	if n >= t.ceiling {
		return false
	}
	n++
	t.inFlight[host] = n
	if n > t.peak[host] {
		t.peak[host] = n
	}
	return true
}

// Release frees one slot for host. It reports false when host had no slot
// taken, which means a release without a matching admission.
func (t *HostThrottle) Release(host model.Host) bool {
	n := t.inFlight[host]
	switch {
	case n == 0:
		return false
	case n == 1:
		delete(t.inFlight, host)
	default:
		t.inFlight[host] = n - 1
	}
	return true
}

// InFlight returns the number of slots currently taken for host.
func (t *HostThrottle) InFlight(host model.Host) int {
	return t.inFlight[host]
}

// Peak returns the highest in-flight count host ever reached.
func (t *HostThrottle) Peak(host model.Host) int {
	return t.peak[host]
}

// Outstanding returns the number of slots taken across all hosts.
func (t *HostThrottle) Outstanding() int {
	total := 0
	for _, n := range t.inFlight {
		total += n
	}
	return total
}

// Busiest returns the host with the highest peak.
// Ties go to the lexically smaller host so the answer is stable.
func (t *HostThrottle) Busiest() (model.Host, int) {
	var (
		busiest model.Host
		peak    int
	)
	for host, n := range t.peak {
		if n > peak || (n == peak && host < busiest) {
			busiest, peak = host, n
		}
	}
	return busiest, peak
}
