package pagination

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

type Pagination struct {
	Page   int
	Limit  int
	Offset int
	Total  int64
}

// ParseFromRequest handles pagination parameters from Fiber context.
// Missing or malformed values fall back to page 1 and DefaultLimit.
func ParseFromRequest(c *fiber.Ctx) Pagination {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(DefaultLimit)))
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	// keeps (page-1)*limit from overflowing into a negative offset
	if page > math.MaxInt/limit {
		page = math.MaxInt / limit
	}
	return Pagination{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// TotalPages is the number of pages needed for Total items.
func (p Pagination) TotalPages() int64 {
	if p.Limit <= 0 {
		return 0
	}
	totalPages := p.Total / int64(p.Limit)
	if p.Total%int64(p.Limit) > 0 {
		totalPages++
	}
	return totalPages
}

// Meta is the standard pagination block of a list response.
func Meta(p Pagination) fiber.Map {
	return fiber.Map{
		"current_page": p.Page,
		"per_page":     p.Limit,
		"total_items":  p.Total,
		"total_pages":  p.TotalPages(),
	}
}

// Response creates a standardized pagination response
func Response(p Pagination, data interface{}) fiber.Map {
	return fiber.Map{
		"data": data,
		"meta": Meta(p),
	}
}
