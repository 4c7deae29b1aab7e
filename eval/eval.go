package eval

import (
	"os"
	"testing"
)

// LiveEnv is the environment variable that enables tests against live
// judge and cloud endpoints.
const LiveEnv = "RAGJUDGE_LIVE"

// SkipUnlessLive skips the test unless RAGJUDGE_LIVE is set.
// Use at the start of tests that call real endpoints to make them opt-in.
func SkipUnlessLive(tb testing.TB) {
	tb.Helper()
	if os.Getenv(LiveEnv) == "" {
		tb.Skip(LiveEnv + " not set")
	}
}
