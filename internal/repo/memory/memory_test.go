package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hamed0406/pinger/internal/domain"
	"github.com/hamed0406/pinger/internal/repo"
)

var endpoints = []domain.Endpoint{
	{Name: "Google", URL: "https://www.google.com", Protocol: "HTTP"},
	{Name: "GitHub", URL: "https://github.com", Protocol: "HTTP"},
	{Name: "API", URL: "http://20.29.187.121", Protocol: "HTTP"},
}

func TestMemoryStore_SnapshotStartsUnknownInOrder(t *testing.T) {
	s := New(endpoints)

	snap, err := s.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap) != len(endpoints) {
		t.Fatalf("want %d states, got %d", len(endpoints), len(snap))
	}
	for i, st := range snap {
		if st.URL != endpoints[i].URL || st.Name != endpoints[i].Name {
			t.Fatalf("order broken at %d: %+v", i, st)
		}
		if st.Status != domain.StatusUnknown {
			t.Fatalf("want unknown, got %q", st.Status)
		}
	}
}

func TestMemoryStore_ApplyTracksStreak(t *testing.T) {
	ctx := context.Background()
	s := New(endpoints)
	url := endpoints[1].URL
	t0 := time.Now().UTC()

	if _, err := s.Apply(ctx, url, domain.Down(domain.ErrorNetwork), t0); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	st, err := s.Apply(ctx, url, domain.Down(domain.ErrorTimeout), t0.Add(time.Minute))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if st.DownSince == nil || !st.DownSince.Equal(t0) {
		t.Fatalf("downSince should stay at first failure, got %v", st.DownSince)
	}

	got, _ := s.Get(ctx, url)
	if got.Status != domain.StatusDown || *got.ErrorType != domain.ErrorTimeout {
		t.Fatalf("stored state wrong: %+v", got)
	}

	// Other endpoints are untouched.
	other, _ := s.Get(ctx, endpoints[0].URL)
	if other.Status != domain.StatusUnknown {
		t.Fatalf("unrelated endpoint changed: %+v", other)
	}
}

func TestMemoryStore_UnknownURL(t *testing.T) {
	s := New(endpoints)
	_, err := s.Apply(context.Background(), "https://nope.example.com", domain.Up(1), time.Now())
	if !errors.Is(err, repo.ErrEndpointNotTracked) {
		t.Fatalf("want ErrEndpointNotTracked, got %v", err)
	}
	if _, err := s.Get(context.Background(), "https://nope.example.com"); !errors.Is(err, repo.ErrEndpointNotTracked) {
		t.Fatalf("want ErrEndpointNotTracked, got %v", err)
	}
}

// Readers racing a writer must only ever see whole records: up with latency
// and no error, or down with an error and no latency.
func TestMemoryStore_ConcurrentReadersSeeWholeRecords(t *testing.T) {
	ctx := context.Background()
	s := New(endpoints)
	url := endpoints[0].URL

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap, _ := s.Snapshot(ctx)
				for _, st := range snap {
					switch st.Status {
					case domain.StatusUp:
						if st.Latency == nil || st.ErrorType != nil || st.DownSince != nil {
							t.Errorf("torn up record: %+v", st)
							return
						}
					case domain.StatusDown:
						if st.Latency != nil || st.ErrorType == nil || st.DownSince == nil {
							t.Errorf("torn down record: %+v", st)
							return
						}
					}
				}
			}
		}()
	}

	for i := 0; i < 2000; i++ {
		res := domain.Up(float64(i))
		if i%2 == 1 {
			res = domain.Down(domain.ErrorNetwork)
		}
		if _, err := s.Apply(ctx, url, res, time.Now()); err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}
	close(stop)
	wg.Wait()
}
