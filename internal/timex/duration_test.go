package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	var cfg struct {
		TTL   Duration `json:"ttl"`
		Nanos Duration `json:"nanos"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"ttl":"5m","nanos":1500}`), &cfg))
	assert.Equal(t, 5*time.Minute, cfg.TTL.Duration)
	assert.Equal(t, 1500*time.Nanosecond, cfg.Nanos.Duration)

	var bad Duration
	assert.Error(t, json.Unmarshal([]byte(`"five minutes"`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`true`), &bad))
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{Duration: 90 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(b))
}
