package scheduler

import (
	"testing"

	"github.com/kristofer/smog/pkg/ingest"
)

// TestScenarioMonitorMutualExclusion exercises spec §8 scenario 5: two
// forked processes each performing 10 Monitor-protected increments of a
// shared counter, driven entirely from interpreted code via `Scheduler
// step`, reach exactly 20 without any lost update.
func TestScenarioMonitorMutualExclusion(t *testing.T) {
	s := New(nil)
	src := `m := Monitor new.
n := 0.
p1 := Processor fork: [10 timesRepeat: [m critical: [n := n + 1]. Processor yield]].
p2 := Processor fork: [10 timesRepeat: [m critical: [n := n + 1]. Processor yield]].
[p1 state = "terminated" and: [p2 state = "terminated"]] whileFalse: [Scheduler step].
n`
	v, errStr := ingest.DoIt(s.MainProcess().VM, src)
	if errStr != "" {
		t.Fatalf("unexpected error: %s", errStr)
	}
	n, ok := v.AsInt()
	if !ok || n != 20 {
		t.Fatalf("got %#v", v)
	}
}
