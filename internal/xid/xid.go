package xid

// Next returns max(ids)+1, or 1 when ids is empty. It holds no state: callers
// pass the ids of the collection as it is persisted right now.
func Next(ids []int64) int64 {
	var max int64
	for _, id := range ids {
		if id > max {
			max = id
		}
	}
	return max + 1
}

// NextOf is Next over any record slice.
func NextOf[T any](records []T, id func(T) int64) int64 {
	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		ids = append(ids, id(rec))
	}
	return Next(ids)
}
