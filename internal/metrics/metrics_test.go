package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/erazemk/obras/internal/store"
)

func TestObserve(t *testing.T) {
	r := New()
	ctx := context.Background()

	r.Observe(ctx, "register movement", nil, 3*time.Millisecond)
	r.Observe(ctx, "register movement", nil, time.Millisecond)
	r.Observe(ctx, "register movement", &store.Error{Kind: store.ErrValidation, Op: "register movement"}, 0)
	r.Observe(ctx, "", nil, 0)

	if got := testutil.ToFloat64(r.operations.WithLabelValues("register movement", "ok")); got != 2 {
		t.Errorf("expected 2 ok operations, got %v", got)
	}
	if got := testutil.ToFloat64(r.operations.WithLabelValues("register movement", "validation")); got != 1 {
		t.Errorf("expected 1 validation failure, got %v", got)
	}
	if n := testutil.CollectAndCount(r.operations); n != 2 {
		t.Errorf("expected 2 operation series, got %d", n)
	}
}

func TestCounters(t *testing.T) {
	r := New()

	r.SiteCreated()
	r.MovementRegistered()
	r.MovementRegistered()
	r.CacheHit()
	r.CacheMiss()
	r.CacheMiss()

	if got := testutil.ToFloat64(r.sites); got != 1 {
		t.Errorf("expected 1 site, got %v", got)
	}
	if got := testutil.ToFloat64(r.movements); got != 2 {
		t.Errorf("expected 2 movements, got %v", got)
	}
	if got := testutil.ToFloat64(r.cache.WithLabelValues("miss")); got != 2 {
		t.Errorf("expected 2 misses, got %v", got)
	}

	if _, err := r.Registry.Gather(); err != nil {
		t.Errorf("gathering: %v", err)
	}
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.Observe(context.Background(), "op", nil, 0)
	r.SiteCreated()
	r.CacheHit()
}

func TestResult(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{&store.Error{Kind: store.ErrValidation}, "validation"},
		{&store.Error{Kind: store.ErrNotFound}, "not_found"},
		{fmt.Errorf("wrapped: %w", &store.Error{Kind: store.ErrUniquenessConflict}), "conflict"},
		{errors.New("disk full"), "persistence"},
	}
	for _, tt := range tests {
		if got := Result(tt.err); got != tt.want {
			t.Errorf("Result(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
