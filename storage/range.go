package storage

// Range selects records by position: Start is inclusive, End is exclusive.
type Range struct {
	Start int
	End   int
}

// All returns a Range covering every position that can be stored.
func All() Range {
	return Range{Start: 0, End: int(^uint(0) >> 1)}
}

// Clamp bounds the range to a store holding n records.
// A negative Start is treated as 0; an empty result has start == end.
func (r Range) Clamp(n int) (start, end int) {
	start = max(r.Start, 0)
	end = min(r.End, n)
	start = min(start, n)
	if end < start {
		end = start
	}
	return start, end
}
