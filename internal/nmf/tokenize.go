package nmf

import (
	"encoding/csv"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Tokenize splits one line on commas. Quoted values may contain commas and
// use "" for an embedded quote.
func Tokenize(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	fields, err := r.Read()
	if err != nil {
		return nil, err
	}
	return fields, nil
}

var startDatePattern = regexp.MustCompile(`^(\d{2})\.(\d{2})\.(\d{4})$`)

// ParseStartDate finds the first DD.MM.YYYY value in an anchor line's fields.
func ParseStartDate(fields []string) (time.Time, bool) {
	for _, f := range fields {
		m := startDatePattern.FindStringSubmatch(Unquote(f))
		if m == nil {
			continue
		}
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}
