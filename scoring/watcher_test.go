package scoring

import "testing"

func TestStartModelWatchRequiresInitialize(t *testing.T) {
	service := NewService(testServiceConfig(t), nil, nil)
	if err := service.StartModelWatch(); err != ErrNotInitialized {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestModelWatchLifecycle(t *testing.T) {
	service := NewService(testServiceConfig(t), nil, nil)
	if err := service.Initialize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := service.StartModelWatch(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := service.StartModelWatch(); err == nil {
		t.Fatal("expected second start to be rejected")
	}
	service.StopModelWatch()

	// a stopped watcher can be started again
	if err := service.StartModelWatch(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	service.StopModelWatch()
}
