package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_Do(t *testing.T) {
	var g SingleFlight[float64]
	var counter int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err, _ := g.Do("filter:1:pro", func() (float64, error) {
				atomic.AddInt32(&counter, 1)
				time.Sleep(20 * time.Millisecond)
				return 812.5, nil
			})
			if err != nil || v != 812.5 {
				t.Errorf("singleflight call returned %v, %v", v, err)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&counter); got != 1 {
		t.Fatalf("expected function to run once, got %d", got)
	}
}

func TestSingleFlight_ReleasesKeyAfterCompletion(t *testing.T) {
	var g SingleFlight[int]
	calls := 0
	for i := 0; i < 3; i++ {
		if _, _, shared := g.Do("k", func() (int, error) { calls++; return calls, nil }); shared {
			t.Fatalf("sequential call %d should not be shared", i)
		}
	}
	if calls != 3 {
		t.Fatalf("expected 3 executions, got %d", calls)
	}
}
