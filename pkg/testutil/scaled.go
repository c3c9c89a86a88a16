package testutil

import (
	"os"
	"strconv"
	"time"
)

// TimeScaleEnv names the environment variable that stretches the timeouts of
// tests on slow machines.
const TimeScaleEnv = "SIFON_TEST_TIME_SCALE"

// Scaled multiplies d by the positive number in $SIFON_TEST_TIME_SCALE. Any
// other value of the variable leaves d unchanged.
func Scaled(d time.Duration) time.Duration {
	scale, err := strconv.ParseFloat(os.Getenv(TimeScaleEnv), 64)
	if err != nil || scale <= 0 {
		return d
	}
	return time.Duration(float64(d) * scale)
}
