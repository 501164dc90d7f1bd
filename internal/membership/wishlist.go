package membership

import (
	"strconv"
	"strings"

	"github.com/mrlokans/circulation/internal/errs"
)

// ParseWishlist decodes the stored wishlist column: comma separated book IDs
// in insertion order. Blank input is an empty list and blank items are skipped.
func ParseWishlist(s string) ([]uint, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseUint(p, 10, 64)
		if err != nil || id == 0 {
			return nil, errs.Validation("invalid wishlist entry %q", p)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// FormatWishlist is the inverse of ParseWishlist.
func FormatWishlist(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}

func wishlistAdd(ids []uint, bookID uint) ([]uint, bool) {
	for _, id := range ids {
		if id == bookID {
			return ids, false
		}
	}
	return append(ids, bookID), true
}

func wishlistRemove(ids []uint, bookID uint) ([]uint, bool) {
	for i, id := range ids {
		if id == bookID {
			return append(ids[:i:i], ids[i+1:]...), true
		}
	}
	return ids, false
}
