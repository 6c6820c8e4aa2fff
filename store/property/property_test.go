package property

import (
	"context"
	"testing"
	"time"

	"github.com/pandodao/zilt-wallet/store/storetest"
)

func TestProperties(t *testing.T) {
	ctx := context.Background()
	s := New(storetest.Open(t))

	var missing string
	if err := s.Get(ctx, "missing", &missing); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if missing != "" {
		t.Errorf("Get() = %q, want empty", missing)
	}

	want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		if err := s.Set(ctx, "last_sync_at", want.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	var got time.Time
	if err := s.Get(ctx, "last_sync_at", &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if !got.Equal(want.Add(time.Hour)) {
		t.Errorf("Get() = %v, want %v", got, want.Add(time.Hour))
	}

	if err := s.Delete(ctx, "last_sync_at"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	got = time.Time{}
	if err := s.Get(ctx, "last_sync_at", &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if !got.IsZero() {
		t.Errorf("Get() after Delete = %v, want zero", got)
	}
}
