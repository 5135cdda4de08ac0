package postgres

import (
	"database/sql/driver"
	"math"
	"strconv"
)

// float8 writes non-finite values using PostgreSQL's spelling
type float8 float64

// Value implements driver.Valuer
func (f float8) Value() (driver.Value, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return "NaN", nil
	case math.IsInf(v, 1):
		return "Infinity", nil
	case math.IsInf(v, -1):
		return "-Infinity", nil
	}
	return strconv.FormatFloat(v, 'g', -1, 64), nil
}
