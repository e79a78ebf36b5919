package id

import (
	"strings"
	"sync"
	"testing"
)

func TestGenerateUnique(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	if id1.String() == id2.String() {
		t.Error("Generated IDs should be unique")
	}
}

func TestGenerateWithPrefix(t *testing.T) {
	tests := []struct {
		name string
		gen  func() string
		want string
	}{
		{"request", func() string { return NewRequestID().String() }, RequestPrefix},
		{"span", func() string { return NewSpanID().String() }, SpanPrefix},
		{"transfer", func() string { return NewTransferID().String() }, TransferPrefix},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := tt.gen()

			if !strings.HasPrefix(id, tt.want+"_") {
				t.Errorf("ID should start with '%s_', got: %s", tt.want, id)
			}
			if !IsValid(id) {
				t.Errorf("ID should be valid: %s", id)
			}
		})
	}
}

func TestIsValidRejectsGarbage(t *testing.T) {
	if IsValid("req_not-a-ulid") {
		t.Error("expected invalid ID")
	}
}

func TestConcurrentGeneration(t *testing.T) {
	const workers = 8
	const perWorker = 200

	var mu sync.Mutex
	seen := make(map[string]struct{}, workers*perWorker)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				id := NewRequestID().String()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Errorf("expected %d unique IDs, got %d", workers*perWorker, len(seen))
	}
}
