package realtime

// Keyed is any row that can be reconciled by id.
type Keyed interface {
	Key() string
}

// Apply reduces a list by one change: insert appends, update replaces the
// matching entry, delete removes it. Change order from the feed is only
// per-row causal, so an update for an id the list has never seen is
// treated as an insert rather than dropped.
func Apply[T Keyed](list []T, op Op, id string, row T) []T {
	switch op {
	case OpInsert:
		for i := range list {
			if list[i].Key() == id {
				// Duplicate delivery; keep the newer row.
				list[i] = row
				return list
			}
		}
		return append(list, row)

	case OpUpdate:
		for i := range list {
			if list[i].Key() == id {
				list[i] = row
				return list
			}
		}
		return append(list, row)

	case OpDelete:
		for i := range list {
			if list[i].Key() == id {
				return append(list[:i], list[i+1:]...)
			}
		}
		return list
	}
	return list
}
