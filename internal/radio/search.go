package radio

// Timestamped is any row ordered by a millisecond timestamp.
type Timestamped interface {
	Timestamp() int64
}

// LowerBound returns the first index whose timestamp is >= ts.
func LowerBound[T Timestamped](rows []T, ts int64) int {
	lo, hi := 0, len(rows)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if rows[mid].Timestamp() < ts {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// UpperBound returns the first index whose timestamp is > ts.
func UpperBound[T Timestamped](rows []T, ts int64) int {
	lo, hi := 0, len(rows)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if rows[mid].Timestamp() <= ts {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Window returns the sub-slice with from <= ts <= to. The result aliases
// rows.
func Window[T Timestamped](rows []T, from, to int64) []T {
	if to < from {
		return nil
	}
	lo := LowerBound(rows, from)
	hi := UpperBound(rows, to)
	if hi <= lo {
		return nil
	}
	return rows[lo:hi]
}

// insertOrdered appends row, or places it after every row with an equal or
// earlier timestamp when it arrives out of order.
func insertOrdered[T Timestamped](rows []T, row T) []T {
	n := len(rows)
	if n == 0 || rows[n-1].Timestamp() <= row.Timestamp() {
		return append(rows, row)
	}
	at := UpperBound(rows, row.Timestamp())
	var zero T
	rows = append(rows, zero)
	copy(rows[at+1:], rows[at:])
	rows[at] = row
	return rows
}
