package timeutil

import (
	"time"
)

// TimeUTC is a small helper type representing Unix time (in seconds) in UTC.
// Using a dedicated type prevents confusion between local and UTC timestamps.
// It also serves as the ledger time all protocol decisions are taken against.
type TimeUTC struct{ T int64 }

func NowUTC() TimeUTC {
	return TimeUTC{T: time.Now().UTC().Unix()}
}

func FromUnix(sec int64) TimeUTC {
	return TimeUTC{T: sec}
}

func (t TimeUTC) After(other TimeUTC) bool { return t.T > other.T }
