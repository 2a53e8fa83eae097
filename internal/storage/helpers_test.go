package storage

import "time"

func fixedTime() time.Time {
	return time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC)
}
