package metrics

import "sync"

// fakeRecorder counts calls keyed by "operation/label".
type fakeRecorder struct {
	mu        sync.Mutex
	ops       map[string]int
	errs      map[string]int
	durations map[string][]float64
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{
		ops:       map[string]int{},
		errs:      map[string]int{},
		durations: map[string][]float64{},
	}
}

func (f *fakeRecorder) RecordOperation(operation, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops[operation+"/"+status]++
}

func (f *fakeRecorder) RecordDuration(operation string, seconds float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.durations[operation] = append(f.durations[operation], seconds)
}

func (f *fakeRecorder) RecordError(operation, errorType string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[operation+"/"+errorType]++
}

func (f *fakeRecorder) op(operation, status string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ops[operation+"/"+status]
}

func (f *fakeRecorder) err(operation, errorType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errs[operation+"/"+errorType]
}
