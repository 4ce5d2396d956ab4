package format

import "time"

// Unix32ToTime converts a __time32_t to UTC. The value is sign-extended, so
// pre-1970 timestamps stay negative.
func Unix32ToTime(v int32) time.Time {
	return time.Unix(int64(v), 0).UTC()
}
