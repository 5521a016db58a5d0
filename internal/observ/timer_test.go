package observ

import (
	"strings"
	"testing"
)

func TestSummaryListsPhasesInOrder(t *testing.T) {
	tm := NewTimer()
	load := tm.Begin("load")
	tm.End(load, "2 images")
	tr := tm.Begin("translate System.Private.CorLib")
	tm.End(tr, "")
	tm.End(99, "ignored")

	rep := tm.Report()
	if len(rep.Phases) != 2 || rep.Phases[0].Name != "load" || rep.Phases[0].Note != "2 images" {
		t.Fatalf("report %+v", rep)
	}
	s := tm.Summary()
	if !strings.HasPrefix(s, "timings:\n") || !strings.Contains(s, "// 2 images") {
		t.Fatalf("summary:\n%s", s)
	}
	if strings.Index(s, "load") > strings.Index(s, "translate") {
		t.Fatalf("phases out of order:\n%s", s)
	}
	if !strings.Contains(s, "  total") {
		t.Fatalf("no total line:\n%s", s)
	}
}

func TestEmptyTimer(t *testing.T) {
	if rep := NewTimer().Report(); rep.TotalMS != 0 || len(rep.Phases) != 0 {
		t.Fatalf("empty report %+v", rep)
	}
}
