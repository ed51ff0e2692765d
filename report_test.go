package islet

import (
	"errors"
	"testing"
)

func TestReport(t *testing.T) {
	boundaryErr := errors.New("render broke")
	r := &Report{}
	r.add(ElementResult{ElementID: "a", Component: "cart", State: StateMounted})
	r.add(ElementResult{ElementID: "b", Component: "cart", State: StateMounted, Err: boundaryErr})
	r.add(ElementResult{ElementID: "c", Component: "banner", State: StateSkipped})
	r.add(ElementResult{ElementID: "d", Component: "ghost", State: StateFailed, Err: ErrUnknownComponent})

	if r.Len() != 4 {
		t.Errorf("Len() = %d, want 4", r.Len())
	}
	if got := r.Count(StateMounted); got != 2 {
		t.Errorf("Count(StateMounted) = %d, want 2", got)
	}
	if got := r.Count(StateFailed); got != 1 {
		t.Errorf("Count(StateFailed) = %d, want 1", got)
	}

	failed := r.Failed()
	if len(failed) != 2 {
		t.Fatalf("Failed() = %d results, want mounted-with-error and failed", len(failed))
	}
	if failed[0].ElementID != "b" || failed[1].ElementID != "d" {
		t.Errorf("Failed() order = %s, %s, want document order", failed[0].ElementID, failed[1].ElementID)
	}

	res, ok := r.ByID("c")
	if !ok || res.State != StateSkipped {
		t.Errorf("ByID(c) = %+v, %v", res, ok)
	}
	if _, ok := r.ByID("zz"); ok {
		t.Error("ByID of unknown element returned ok=true")
	}

	err := r.Err()
	if !errors.Is(err, boundaryErr) || !errors.Is(err, ErrUnknownComponent) {
		t.Errorf("Err() = %v, want both element errors joined", err)
	}
}

func TestReportClean(t *testing.T) {
	r := &Report{}
	r.add(ElementResult{ElementID: "a", State: StateMounted})

	if r.Err() != nil {
		t.Errorf("Err() = %v, want nil for a clean pass", r.Err())
	}
	if len(r.Failed()) != 0 {
		t.Error("Failed() should be empty for a clean pass")
	}
}

func TestReportResults(t *testing.T) {
	r := &Report{}
	if r.Len() != 0 || len(r.Results()) != 0 {
		t.Error("empty report should have no results")
	}
}
