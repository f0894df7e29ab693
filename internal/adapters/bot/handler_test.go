package bot

import "testing"

func TestTakePendingGroup(t *testing.T) {
	h := &Handler{pendingGroup: make(map[int64]struct{})}

	if h.takePendingGroup(42) {
		t.Fatal("без ожидания должен вернуться false")
	}

	h.mu.Lock()
	h.pendingGroup[42] = struct{}{}
	h.mu.Unlock()

	if !h.takePendingGroup(42) {
		t.Fatal("ожидание должно сработать один раз")
	}
	if h.takePendingGroup(42) {
		t.Fatal("повторный вызов должен вернуть false")
	}
}
