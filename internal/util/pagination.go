package util

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// Calculate normalises page and size and returns the row offset.
func Calculate(page, size int) (normPage, normSize, offset int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size, (page - 1) * size
}

func Pages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
