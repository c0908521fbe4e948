package servicebus

import (
	"fmt"
	"time"
)

// Verdict is the binary outcome of one probe.
type Verdict struct {
	// Healthy is true when the probe operation completed.
	Healthy bool

	// Err is the cause of an unhealthy verdict. It wraps the messaging client
	// error, a construction error, or the context error on cancellation.
	Err error

	Target   Target
	Duration time.Duration

	// Properties is set by healthy management probes.
	Properties *RuntimeProperties
}

func (v Verdict) String() string {
	if v.Healthy {
		return fmt.Sprintf("%s: healthy in %s", v.Target, v.Duration)
	}
	return fmt.Sprintf("%s: unhealthy in %s: %v", v.Target, v.Duration, v.Err)
}
