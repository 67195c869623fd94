package user

import "math"

// pageOffset returns the row offset of page. ok is false when the offset
// does not fit in an int; such a page lies past any stored data.
func pageOffset(page, pageSize int) (offset int, ok bool) {
	if page < 1 || pageSize < 1 {
		return 0, false
	}
	if page-1 > math.MaxInt/pageSize {
		return 0, false
	}
	return (page - 1) * pageSize, true
}
