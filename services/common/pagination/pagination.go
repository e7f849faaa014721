package pagination

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params is a validated page request.
type Params struct {
	Page  int
	Limit int
}

// Offset of the first row of the page.
func (p Params) Offset() int { return (p.Page - 1) * p.Limit }

// Meta is returned next to every paginated list.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

// Parse reads page/limit; bad or missing values fall back to defaults and
// limit is clamped to MaxLimit. pageSize is accepted as an alias of limit.
func Parse(c *gin.Context) Params {
	return ParseWithDefault(c, DefaultLimit)
}

func ParseWithDefault(c *gin.Context, defaultLimit int) Params {
	p := Params{Page: DefaultPage, Limit: defaultLimit}

	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		p.Page = v
	}
	raw := c.Query("limit")
	if raw == "" {
		raw = c.Query("pageSize")
	}
	if v, err := strconv.Atoi(raw); err == nil && v > 0 {
		p.Limit = v
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// NewMeta computes total_pages = ceil(total/limit).
func NewMeta(p Params, total int64) Meta {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	return Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    p.Page < totalPages,
	}
}

// Slice returns the page of items, for stores that cannot page server side.
func Slice[T any](items []T, p Params) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
