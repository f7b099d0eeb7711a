package sweep

import (
	"errors"
	"testing"
)

func TestNewAccumulatorStartsEmpty(t *testing.T) {
	acc := NewAccumulator(3)
	if len(acc) != 3 {
		t.Fatalf("expected 3 setting slots, got %d", len(acc))
	}
	for i := 1; i <= 3; i++ {
		if len(acc[i]) != 0 {
			t.Fatalf("setting %d starts with %d filled slots", i, len(acc[i]))
		}
	}
	if _, ok := acc.Get(Task{Setting: 1, Trial: 1}); ok {
		t.Fatalf("unset slot reported as filled")
	}
}

func TestCountsSplitSuccessesAndFailures(t *testing.T) {
	acc := NewAccumulator(2)
	acc.Set(Task{Setting: 1, Trial: 1}, TaskResult{Value: 1})
	acc.Set(Task{Setting: 1, Trial: 2}, Failure(errors.New("x")))
	acc.Set(Task{Setting: 2, Trial: 1}, TaskResult{Value: 2})
	succeeded, failed := acc.Counts()
	if succeeded != 2 || failed != 1 {
		t.Fatalf("counts %d/%d, want 2/1", succeeded, failed)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	acc := NewAccumulator(1)
	acc.Set(Task{Setting: 1, Trial: 1}, TaskResult{Value: "a"})
	cp := acc.Clone()
	acc.Set(Task{Setting: 1, Trial: 2}, TaskResult{Value: "b"})
	if _, ok := cp.Get(Task{Setting: 1, Trial: 2}); ok {
		t.Fatalf("clone observed a later write")
	}
}

func TestFailureMarkerCarriesMessage(t *testing.T) {
	res := Failure(errors.New("generator: no data"))
	if !res.Failed || res.Error != "generator: no data" {
		t.Fatalf("marker %+v", res)
	}
	if res.Value != nil {
		t.Fatalf("failure marker carries a value")
	}
	nilRes := Failure(nil)
	if !nilRes.Failed || nilRes.Error == "" {
		t.Fatalf("nil-error marker %+v", nilRes)
	}
}
