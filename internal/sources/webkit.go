package sources

import "time"

// webkitEpochOffset is the number of microseconds between 1601-01-01 and the
// Unix epoch. Chrome stores timestamps as microseconds since 1601.
const webkitEpochOffset int64 = 11644473600 * 1_000_000

// fromWebKit converts a Chrome timestamp to time. Zero and negative values
// mean "unknown" and map to the zero time.
func fromWebKit(micros int64) time.Time {
	if micros <= 0 {
		return time.Time{}
	}
	return time.UnixMicro(micros - webkitEpochOffset).UTC()
}

// toWebKit converts a time to a Chrome timestamp.
func toWebKit(t time.Time) int64 {
	return t.UnixMicro() + webkitEpochOffset
}
