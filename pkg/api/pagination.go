package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const maxPageSize = 100

type page struct {
	Number int
	Size   int
}

func (p page) Offset() int {
	return (p.Number - 1) * p.Size
}

// parsePage reads page and page_size, falling back to defaults for missing
// or malformed values and clamping the size to maxPageSize.
func parsePage(c *gin.Context, defaultSize int) page {
	p := page{Number: 1, Size: defaultSize}
	if n, err := strconv.Atoi(c.Query("page")); err == nil && n > 0 {
		p.Number = n
	}
	if s, err := strconv.Atoi(c.Query("page_size")); err == nil && s > 0 {
		p.Size = s
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return p
}

func paginated(p page, total int64, items []gin.H) gin.H {
	return gin.H{
		"page":          p.Number,
		"pageSize":      p.Size,
		"totalElements": total,
		"items":         items,
	}
}
