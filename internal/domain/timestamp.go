package domain

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Timestamp is a wall-clock instant persisted as fractional unix seconds.
type Timestamp struct {
	time.Time
}

// At returns a Timestamp pointer for t.
func At(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	secs := float64(t.UnixNano()) / float64(time.Second)
	return strconv.AppendFloat(nil, secs, 'f', -1, 64), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" {
		return nil
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return err
	}
	whole, frac := math.Modf(secs)
	t.Time = time.Unix(int64(whole), int64(frac*float64(time.Second)))
	return nil
}

// elapsedSeconds returns whole seconds from start to now, clamped at zero.
func elapsedSeconds(start, now time.Time) int {
	secs := int(now.Sub(start) / time.Second)
	if secs < 0 {
		return 0
	}
	return secs
}

// FormatMMSS renders seconds as mm:ss.
func FormatMMSS(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
