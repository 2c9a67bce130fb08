package utils

import "strconv"

const pageSizeDefault = 20
const pageSizeMax = 100

// ParsePagination turns raw offset/limit query values into usable bounds.
// Empty or unparsable values fall back to defaults, and the limit is capped
// so a single request cannot page through an entire tenant's history.
func ParsePagination(offsetParam, limitParam string) (int, int) {
	offset := 0
	limit := pageSizeDefault

	if parsed, err := strconv.Atoi(offsetParam); err == nil && parsed >= 0 {
		offset = parsed
	}
	if parsed, err := strconv.Atoi(limitParam); err == nil && parsed > 0 {
		limit = min(parsed, pageSizeMax)
	}

	return offset, limit
}
