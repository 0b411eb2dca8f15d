package assessment

import (
	"fmt"
	"time"
)

// CooldownError is returned when a volunteer tries to start a submission too soon after the last one in the same area.
type CooldownError struct {
	TopicArea string
	Until     time.Time
}

func (ce CooldownError) Error() string {
	return fmt.Sprintf("a new self-assessment in %q can be started after %s", ce.TopicArea, ce.Until.Format(time.RFC3339))
}

// CheckCooldown fails when `lastResolvedAt` + `cooldownDays` is still ahead of `now`. 0 days disables the check.
func CheckCooldown(topicArea string, lastResolvedAt time.Time, cooldownDays int, now time.Time) error {
	if cooldownDays <= 0 || lastResolvedAt.IsZero() {
		return nil
	}
	until := lastResolvedAt.UTC().AddDate(0, 0, cooldownDays)
	if now.UTC().Before(until) {
		return &CooldownError{TopicArea: topicArea, Until: until}
	}
	return nil
}
