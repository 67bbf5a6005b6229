package oracle

import (
	"fmt"

	"github.com/sarchlab/cachesim/simulator"
	"github.com/sarchlab/cachesim/trace"
)

// Divergence reports the first access on which the simulator and the oracle
// disagree.
type Divergence struct {
	Index  int
	Access trace.Access
	Want   Outcome
	Got    simulator.AccessResult
}

func (d *Divergence) Error() string {
	return fmt.Sprintf(
		"access %d (%s): oracle hit=%t evicted=%t tag=%d, "+
			"simulator hit=%t evicted=%t tag=%d",
		d.Index, d.Access,
		d.Want.Hit, d.Want.Evicted, d.Want.EvictedTag,
		d.Got.Hit, d.Got.Evicted, d.Got.EvictedTag,
	)
}

// Verify replays accesses through s and through an oracle built for the
// configuration of s, and returns a *Divergence for the first access they
// disagree on. s should be freshly configured.
func Verify(s *simulator.Simulator, accesses []trace.Access, r trace.Replayer) error {
	o, err := New(s.Config())
	if err != nil {
		return err
	}

	for i, a := range accesses {
		got := r.Step(s, a)

		var want Outcome
		if a.Op == simulator.OpRead {
			want = o.Read(a.Addr)
		} else {
			want = o.Write(a.Addr, got.WritePolicy, got.MissPolicy)
		}

		if !agree(want, got) {
			return &Divergence{Index: i, Access: a, Want: want, Got: got}
		}
	}

	if o.Stats() != s.Stats() {
		return fmt.Errorf("statistics differ: oracle %+v, simulator %+v",
			o.Stats(), s.Stats())
	}

	return nil
}

func agree(want Outcome, got simulator.AccessResult) bool {
	if want.Hit != got.Hit || want.Evicted != got.Evicted {
		return false
	}

	if want.Bypass != (got.Way == -1) {
		return false
	}

	return !want.Evicted || want.EvictedTag == got.EvictedTag
}
