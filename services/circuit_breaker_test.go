package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func testBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     100 * time.Millisecond,
		MinRequests: 5,
	}
}

func TestNewCircuitBreakerRegistry(t *testing.T) {
	config := testBreakerConfig()
	registry := NewCircuitBreakerRegistry(config)

	if registry == nil {
		t.Fatal("expected registry to be created")
	}
	if registry.breakers == nil {
		t.Error("expected breakers map to be initialized")
	}
	if registry.config != config {
		t.Error("expected config to be set")
	}
}

func TestCircuitBreakerRegistry_GetBreaker(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)

	breaker1 := registry.GetBreaker(BreakerAnthropic)
	if breaker1 == nil {
		t.Fatal("expected breaker to be created")
	}
	if breaker1 != registry.GetBreaker(BreakerAnthropic) {
		t.Error("expected same breaker instance")
	}
	if breaker1 == registry.GetBreaker("other-service") {
		t.Error("expected different breaker for different name")
	}
}

func TestCircuitBreakerRegistry_Execute_Success(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)

	result, err := registry.Execute(context.Background(), "test-service", func() (any, error) {
		return "success", nil
	})

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if result != "success" {
		t.Errorf("expected 'success', got %v", result)
	}
}

func TestCircuitBreakerRegistry_Execute_ErrorPassesThrough(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)

	upstream := &UpstreamError{StatusCode: 502}
	_, err := registry.Execute(context.Background(), "test-service", func() (any, error) {
		return nil, upstream
	})

	var got *UpstreamError
	if !errors.As(err, &got) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if got.StatusCode != 502 {
		t.Errorf("StatusCode = %d, want 502", got.StatusCode)
	}
}

func TestCircuitBreakerRegistry_Execute_ContextCanceled(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := registry.Execute(ctx, "test-service", func() (any, error) {
		called = true
		return "should not reach", nil
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Error("fn should not run with a cancelled context")
	}
}

func TestCircuitBreakerRegistry_Status(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)
	ctx := context.Background()

	_, _ = registry.Execute(ctx, "service-a", func() (any, error) {
		return "ok", nil
	})
	_, _ = registry.Execute(ctx, "service-b", func() (any, error) {
		return nil, errors.New("fail")
	})

	status := registry.Status()

	if len(status) != 2 {
		t.Errorf("expected 2 breakers in status, got %d", len(status))
	}
	if status["service-a"].TotalSuccesses != 1 {
		t.Errorf("expected 1 success for service-a, got %d", status["service-a"].TotalSuccesses)
	}
	if status["service-b"].TotalFailures != 1 {
		t.Errorf("expected 1 failure for service-b, got %d", status["service-b"].TotalFailures)
	}
	if status["service-a"].State != "closed" {
		t.Errorf("expected service-a closed, got %s", status["service-a"].State)
	}
}

func TestCircuitBreakerRegistry_TripsAfterFailures(t *testing.T) {
	registry := NewCircuitBreakerRegistry(testBreakerConfig())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _ = registry.Execute(ctx, "failing-service", func() (any, error) {
			return nil, &UpstreamError{StatusCode: 503}
		})
	}

	if state := registry.Status()["failing-service"].State; state != "open" {
		t.Fatalf("expected breaker to be open, got %s", state)
	}

	_, err := registry.Execute(ctx, "failing-service", func() (any, error) {
		return "should not execute", nil
	})

	if !errors.Is(err, ErrBreakerOpen) {
		t.Errorf("expected ErrBreakerOpen, got %v", err)
	}
	if !IsUnavailable(err) {
		t.Error("expected IsUnavailable to be true")
	}
	if err.Error() != "service failing-service unavailable: circuit breaker open" {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestCircuitBreakerRegistry_ClientErrorsDoNotTrip(t *testing.T) {
	registry := NewCircuitBreakerRegistry(testBreakerConfig())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := registry.Execute(ctx, "bad-request", func() (any, error) {
			return nil, &UpstreamError{StatusCode: 400}
		})
		if err == nil {
			t.Fatal("expected the upstream error to be returned")
		}
	}

	if state := registry.Status()["bad-request"].State; state != "closed" {
		t.Errorf("expected breaker to stay closed on 4xx, got %s", state)
	}
}

func TestCircuitBreakerRegistry_RateLimitTrips(t *testing.T) {
	registry := NewCircuitBreakerRegistry(testBreakerConfig())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _ = registry.Execute(ctx, "limited", func() (any, error) {
			return nil, &UpstreamError{StatusCode: 429}
		})
	}

	if state := registry.Status()["limited"].State; state != "open" {
		t.Errorf("expected 429s to open the breaker, got %s", state)
	}
}

func TestCircuitBreakerRegistry_HalfOpenRecovers(t *testing.T) {
	registry := NewCircuitBreakerRegistry(testBreakerConfig())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _ = registry.Execute(ctx, "recovering", func() (any, error) {
			return nil, errors.New("fail")
		})
	}

	time.Sleep(150 * time.Millisecond)

	result, err := registry.Execute(ctx, "recovering", func() (any, error) {
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("expected probe to succeed, got %v", err)
	}
	if result != "ok" {
		t.Errorf("expected 'ok', got %v", result)
	}
	if state := registry.Status()["recovering"].State; state != "closed" {
		t.Errorf("expected breaker closed after probe, got %s", state)
	}
}

func TestWithCircuitBreaker_TypedResults(t *testing.T) {
	SetGlobalRegistry(NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig))

	result, err := WithCircuitBreaker(context.Background(), "typed-test", func() (*CompletionResponse, error) {
		return &CompletionResponse{Segments: []Segment{{Type: "text", Text: "hi"}}}, nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Segments) != 1 || result.Segments[0].Text != "hi" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestWithCircuitBreaker_Error(t *testing.T) {
	SetGlobalRegistry(NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig))

	result, err := WithCircuitBreaker(context.Background(), "test", func() (string, error) {
		return "", errors.New("test error")
	})

	if err == nil {
		t.Error("expected error")
	}
	if result != "" {
		t.Errorf("expected empty string, got %s", result)
	}
}

func TestGetGlobalRegistry(t *testing.T) {
	SetGlobalRegistry(nil)

	registry := GetGlobalRegistry()
	if registry == nil {
		t.Fatal("expected global registry to be created")
	}
	if registry != GetGlobalRegistry() {
		t.Error("expected same global registry instance")
	}
}

func TestCircuitBreakerRegistry_Concurrent(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)
	ctx := context.Background()

	var wg sync.WaitGroup
	errChan := make(chan error, 10)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := registry.Execute(ctx, "concurrent-test", func() (any, error) {
				return id, nil
			}); err != nil {
				errChan <- err
			}
		}(i)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		t.Errorf("unexpected error: %v", err)
	}
	if got := registry.Status()["concurrent-test"].TotalSuccesses; got != 10 {
		t.Errorf("expected 10 successes, got %d", got)
	}
}

func TestStateToInt(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)
	cb := registry.GetBreaker("state")
	if got := stateToInt(cb.State()); got != 0 {
		t.Errorf("expected closed state to map to 0, got %d", got)
	}
}
