package sysmetrics

import (
	"math"
	"testing"
)

func ticksOf(user, system, idle, iowait uint64) Ticks {
	var t Ticks
	t[User] = user
	t[System] = system
	t[Idle] = idle
	t[IOWait] = iowait
	return t
}

func TestLoadEstimator_Estimate(t *testing.T) {
	tests := []struct {
		name string
		prev Ticks
		cur  Ticks
		want float64
	}{
		{
			name: "half busy",
			prev: ticksOf(100, 100, 800, 0),
			cur:  ticksOf(150, 150, 900, 0),
			want: 50,
		},
		{
			name: "iowait counts as idle",
			prev: Ticks{},
			cur:  ticksOf(25, 0, 50, 25),
			want: 25,
		},
		{
			name: "fully idle",
			prev: ticksOf(10, 10, 80, 0),
			cur:  ticksOf(10, 10, 180, 0),
			want: 0,
		},
		{
			name: "fully busy",
			prev: ticksOf(10, 10, 80, 0),
			cur:  ticksOf(60, 60, 80, 0),
			want: 100,
		},
		{
			name: "no elapsed time",
			prev: ticksOf(10, 10, 80, 0),
			cur:  ticksOf(10, 10, 80, 0),
			want: 0,
		},
		{
			name: "counter regression",
			prev: ticksOf(1000, 1000, 8000, 0),
			cur:  ticksOf(10, 10, 80, 0),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &LoadEstimator{prev: tt.prev}
			got := e.Estimate(tt.cur)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Estimate() = %v, want %v", got, tt.want)
			}
			if e.prev != tt.cur {
				t.Errorf("baseline not advanced to current reading")
			}
		})
	}
}

func TestLoadEstimator_FirstCallMeasuresSinceBoot(t *testing.T) {
	var e LoadEstimator
	got := e.Estimate(ticksOf(30, 10, 60, 0))
	if math.Abs(got-40) > 1e-9 {
		t.Errorf("first Estimate() = %v, want 40", got)
	}
}

func TestLoadEstimator_Sequence(t *testing.T) {
	var e LoadEstimator
	e.Estimate(ticksOf(100, 0, 900, 0))

	// 20 busy out of 100.
	if got := e.Estimate(ticksOf(120, 0, 980, 0)); math.Abs(got-20) > 1e-9 {
		t.Errorf("second Estimate() = %v, want 20", got)
	}
	// 75 busy out of 100.
	if got := e.Estimate(ticksOf(170, 25, 1005, 0)); math.Abs(got-75) > 1e-9 {
		t.Errorf("third Estimate() = %v, want 75", got)
	}
}

func TestLoadEstimator_RegressionReseeds(t *testing.T) {
	var e LoadEstimator
	e.Estimate(ticksOf(1000, 0, 9000, 0))
	e.Estimate(ticksOf(10, 0, 90, 0)) // reboot

	if got := e.Estimate(ticksOf(60, 0, 140, 0)); math.Abs(got-50) > 1e-9 {
		t.Errorf("Estimate after regression = %v, want 50", got)
	}
}

func TestTicks_Totals(t *testing.T) {
	var tk Ticks
	for i := range tk {
		tk[i] = uint64(i + 1)
	}
	if got := tk.Total(); got != 36 {
		t.Errorf("Total() = %d, want 36", got)
	}
	if got := tk.IdleTotal(); got != uint64(Idle+1)+uint64(IOWait+1) {
		t.Errorf("IdleTotal() = %d", got)
	}
}

func TestTickType_String(t *testing.T) {
	if got := SoftIRQ.String(); got != "softirq" {
		t.Errorf("SoftIRQ.String() = %q", got)
	}
	if got := TickType(99).String(); got != "unknown" {
		t.Errorf("TickType(99).String() = %q", got)
	}
}
