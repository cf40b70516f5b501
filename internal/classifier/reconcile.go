package classifier

import "github.com/teemow/inboxsort/internal/email"

// Reconcile aligns the model items with the input records. The result has
// one entry per record, in record order, carrying the record's id.
//
// A record takes the first unused item with the same id. Failing that, it
// takes the item at its own position if that item has no id. Only the
// category is taken from the item; a record left without one gets the
// default category. The record's own from and snippet are always kept, since
// the prompt flattens newlines and replaces invalid UTF-8, so an echo is not
// byte-identical to the input.
//
// unmatched holds the items no record claimed.
func Reconcile(records []email.Record, items []Item) (out []email.Classified, unmatched []Item) {
	byID := make(map[string][]int, len(items))
	for i, it := range items {
		if it.ID != nil {
			byID[*it.ID] = append(byID[*it.ID], i)
		}
	}
	used := make([]bool, len(items))

	take := func(i int) (Item, bool) {
		if used[i] {
			return Item{}, false
		}
		used[i] = true
		return items[i], true
	}

	out = make([]email.Classified, 0, len(records))
	for pos, r := range records {
		item, ok := Item{}, false

		for _, i := range byID[r.ID] {
			if item, ok = take(i); ok {
				break
			}
		}
		if !ok && pos < len(items) && items[pos].ID == nil {
			item, ok = take(pos)
		}

		c := email.Classified{Record: r, Category: email.DefaultCategory}
		if ok {
			c.Category = item.Category
		}
		out = append(out, c)
	}

	for i, it := range items {
		if !used[i] {
			unmatched = append(unmatched, it)
		}
	}
	return out, unmatched
}
