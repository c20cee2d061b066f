package endpoints

import "time"

// SetIMDbOverloadDelay shortens the 503 backoff for tests.
func SetIMDbOverloadDelay(d time.Duration) (restore func()) {
	previous := imdbOverloadDelay
	imdbOverloadDelay = d
	return func() { imdbOverloadDelay = previous }
}
