package timeouts_test

import (
	"testing"
	"time"

	"github.com/dalemusser/applyhub/internal/app/system/timeouts"
)

func TestConfigureOverridesAndReset(t *testing.T) {
	t.Cleanup(timeouts.Reset)

	timeouts.Configure(timeouts.Config{
		Ping:  500 * time.Millisecond,
		Batch: 2 * time.Minute,
	})

	if got := timeouts.Ping(); got != 500*time.Millisecond {
		t.Errorf("Ping() = %v, want 500ms", got)
	}
	if got := timeouts.Batch(); got != 2*time.Minute {
		t.Errorf("Batch() = %v, want 2m", got)
	}

	// Zero values leave the others alone.
	if got := timeouts.Short(); got != timeouts.DefaultShort {
		t.Errorf("Short() = %v, want default %v", got, timeouts.DefaultShort)
	}
	if got := timeouts.Medium(); got != timeouts.DefaultMedium {
		t.Errorf("Medium() = %v, want default %v", got, timeouts.DefaultMedium)
	}

	timeouts.Reset()
	if got := timeouts.Ping(); got != timeouts.DefaultPing {
		t.Errorf("Ping() after Reset = %v, want default %v", got, timeouts.DefaultPing)
	}
}
