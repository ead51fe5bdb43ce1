package transaction

import "sort"

// Merge concatenates the given lists, drops entries without an ID and sorts the
// result newest first. Entries sharing a date keep their input order, so live
// entries come before transfers when callers pass them in that order.
func Merge(lists ...[]Transaction) []Transaction {
	n := 0
	for _, l := range lists {
		n += len(l)
	}

	merged := make([]Transaction, 0, n)
	for _, l := range lists {
		for _, tx := range l {
			if tx.ID == "" {
				continue
			}
			merged = append(merged, tx)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date.After(merged[j].Date)
	})
	return merged
}
