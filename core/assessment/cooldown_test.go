package assessment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCooldown(t *testing.T) {
	lastResolved := testNow.AddDate(0, 0, -3)

	tests := []struct {
		name    string
		last    time.Time
		days    int
		now     time.Time
		wantErr bool
	}{
		{name: "approved 3 days ago, 7 days cooldown", last: lastResolved, days: 7, now: testNow, wantErr: true},
		{name: "one second before the end", last: lastResolved, days: 7, now: lastResolved.AddDate(0, 0, 7).Add(-time.Second), wantErr: true},
		{name: "cooldown elapsed", last: lastResolved, days: 7, now: lastResolved.AddDate(0, 0, 7)},
		{name: "no cooldown", last: lastResolved, days: 0, now: testNow},
		{name: "negative days disable it", last: lastResolved, days: -2, now: testNow},
		{name: "never resolved", days: 7, now: testNow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckCooldown("lectura", tt.last, tt.days, tt.now)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			ce, ok := err.(*CooldownError)
			require.True(t, ok, "want *CooldownError, got %v", err)
			assert.Equal(t, "lectura", ce.TopicArea)
			assert.Equal(t, tt.last.AddDate(0, 0, tt.days), ce.Until)
		})
	}
}
