package kernel

import "time"

// Profile accumulates step timing for one task. Updates are O(1) and do not
// allocate.
type Profile struct {
	Runs      uint64
	Total     time.Duration
	Last      time.Duration
	Max       time.Duration
	TotalLate time.Duration
	MaxLate   time.Duration
}

func (p *Profile) record(elapsed, late time.Duration) {
	if elapsed < 0 {
		elapsed = 0
	}
	p.Runs++
	p.Total += elapsed
	p.Last = elapsed
	if elapsed > p.Max {
		p.Max = elapsed
	}
	p.TotalLate += late
	if late > p.MaxLate {
		p.MaxLate = late
	}
}

// Avg is the mean step duration.
func (p *Profile) Avg() time.Duration {
	if p.Runs == 0 {
		return 0
	}
	return p.Total / time.Duration(p.Runs)
}

// AvgLate is the mean dispatch lateness past the due time.
func (p *Profile) AvgLate() time.Duration {
	if p.Runs == 0 {
		return 0
	}
	return p.TotalLate / time.Duration(p.Runs)
}
