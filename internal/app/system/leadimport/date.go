package leadimport

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// excelEpoch is day zero of spreadsheet serial dates.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

const dateLayout = "2006-01-02"

var stringLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
	"20060102",
}

// maxSerial is 9999-12-31, the last date a spreadsheet can hold.
const maxSerial = 2958465

// ParseExcelDate renders a spreadsheet date cell as yyyy-mm-dd. Serial day
// counts (numbers or numeric strings), time.Time values and common date
// strings are understood; anything else yields "".
func ParseExcelDate(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return fromSerial(x)
	case float32:
		return fromSerial(float64(x))
	case int:
		return fromSerial(float64(x))
	case int64:
		return fromSerial(float64(x))
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.UTC().Format(dateLayout)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return ""
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && f <= maxSerial {
			return fromSerial(f)
		}
		for _, layout := range stringLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC().Format(dateLayout)
			}
		}
	}
	return ""
}

func fromSerial(days float64) string {
	if days <= 0 || days > maxSerial {
		return ""
	}
	// the time of day is dropped
	return excelEpoch.AddDate(0, 0, int(math.Floor(days))).Format(dateLayout)
}
