package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// DateTime wraps time.Time with tolerant JSON parsing (RFC3339 or "2006-01-02").
type DateTime struct {
	time.Time
}

const dateOnly = "2006-01-02"

func (dt DateTime) MarshalJSON() ([]byte, error) {
	if dt.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + dt.Format(time.RFC3339) + `"`), nil
}

func (dt *DateTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		dt.Time = time.Time{}
		return nil
	}

	for _, layout := range []string{time.RFC3339, dateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			dt.Time = t
			return nil
		}
	}
	return fmt.Errorf("unsupported datetime format: %s", s)
}

// Value implements driver.Valuer for database storage.
func (dt DateTime) Value() (driver.Value, error) {
	if dt.IsZero() {
		return nil, nil
	}
	return dt.Time, nil
}

// Scan implements sql.Scanner.
func (dt *DateTime) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		dt.Time = time.Time{}
	case time.Time:
		dt.Time = v
	case []byte:
		return dt.UnmarshalJSON(v)
	case string:
		return dt.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("cannot scan %T into DateTime", value)
	}
	return nil
}
