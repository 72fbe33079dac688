package registry

import (
	"sync"
	"testing"
)

func TestAppendKeepsSequencesAligned(t *testing.T) {
	r := New()
	r.Append("alice", []float64{1, 2, 3})
	r.Append("bob", []float64{4, 5, 6})

	names, encodings := r.Snapshot()
	if len(names) != len(encodings) {
		t.Fatalf("sequences out of lock-step: %d names, %d encodings", len(names), len(encodings))
	}
	if names[0] != "alice" || names[1] != "bob" {
		t.Errorf("unexpected names order: %v", names)
	}
	if encodings[1][0] != 4 {
		t.Errorf("encoding not aligned with name: %v", encodings[1])
	}
}

func TestAppendCopiesEmbedding(t *testing.T) {
	r := New()
	emb := []float64{1, 2, 3}
	r.Append("alice", emb)
	emb[0] = 99

	_, encodings := r.Snapshot()
	if encodings[0][0] != 1 {
		t.Errorf("registry shares memory with caller slice: %v", encodings[0])
	}
}

func TestRemoveByNameAbsentIsNoop(t *testing.T) {
	r := New()
	r.Append("alice", []float64{1})
	r.Append("bob", []float64{2})

	if got := r.RemoveByName("carol"); got != 0 {
		t.Errorf("expected 0 removed, got %d", got)
	}
	names, encodings := r.Snapshot()
	if len(names) != 2 || len(encodings) != 2 {
		t.Errorf("registry changed by no-op removal: %v", names)
	}
}

func TestRemoveByNameRemovesAllSamples(t *testing.T) {
	r := New()
	r.Append("alice", []float64{1})
	r.Append("bob", []float64{2})
	r.Append("alice", []float64{3})

	if got := r.RemoveByName("alice"); got != 2 {
		t.Errorf("expected 2 removed, got %d", got)
	}
	names, encodings := r.Snapshot()
	if len(names) != 1 || names[0] != "bob" {
		t.Errorf("expected only bob to remain, got %v", names)
	}
	if encodings[0][0] != 2 {
		t.Errorf("bob's encoding lost during removal: %v", encodings[0])
	}
}

func TestRemoveByNameIsCaseSensitive(t *testing.T) {
	r := New()
	r.Append("Alice", []float64{1})

	if got := r.RemoveByName("alice"); got != 0 {
		t.Errorf("expected case-sensitive match, removed %d", got)
	}
	if r.Len() != 1 {
		t.Errorf("entry removed despite case mismatch")
	}
}

func TestEnrolledCountsSamplesInFirstEnrolledOrder(t *testing.T) {
	r := New()
	r.Append("bob", []float64{1})
	r.Append("alice", []float64{2})
	r.Append("bob", []float64{3})

	enrolled := r.Enrolled()
	if len(enrolled) != 2 {
		t.Fatalf("expected 2 identities, got %d", len(enrolled))
	}
	if enrolled[0].Name != "bob" || enrolled[0].Samples != 2 {
		t.Errorf("expected bob first with 2 samples, got %+v", enrolled[0])
	}
	if enrolled[1].Name != "alice" || enrolled[1].Samples != 1 {
		t.Errorf("expected alice with 1 sample, got %+v", enrolled[1])
	}
}

func TestConcurrentAppendsAllLand(t *testing.T) {
	r := New()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		name := []string{"alice", "bob"}[i]
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Append(name, []float64{float64(j)})
			}
		}()
	}
	wg.Wait()

	if r.Len() != 200 {
		t.Errorf("lost update: expected 200 entries, got %d", r.Len())
	}
	for _, e := range r.Enrolled() {
		if e.Samples != 100 {
			t.Errorf("identity %s has %d samples, expected 100", e.Name, e.Samples)
		}
	}
}

func TestSnapshotIsIsolatedFromMutations(t *testing.T) {
	r := New()
	r.Append("alice", []float64{1})

	names, encodings := r.Snapshot()
	r.RemoveByName("alice")

	if len(names) != 1 || len(encodings) != 1 {
		t.Errorf("snapshot affected by later mutation")
	}
	encodings[0][0] = 42
	r.Append("alice", []float64{1})
	_, fresh := r.Snapshot()
	if fresh[0][0] != 1 {
		t.Errorf("snapshot shares memory with registry")
	}
}
