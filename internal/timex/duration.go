// Package timex provides a JSON-friendly duration.
package timex

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Duration unmarshals from either a Go duration string ("15m", "3h") or an
// integer number of nanoseconds.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		var err error
		d.Duration, err = time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		return nil
	default:
		return errors.New("invalid duration")
	}
}
