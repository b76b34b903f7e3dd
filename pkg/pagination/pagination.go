package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// 分页边界
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageParams 请求分页参数
type PageParams struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

// PageInfo 响应分页信息
type PageInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// ParsePageParams 从查询串解析page/page_size
// 非法或越界值回落到默认边界，page_size封顶MaxPageSize。
func ParsePageParams(c *gin.Context) *PageParams {
	page := positiveIntOr(c.Query("page"), DefaultPage)
	pageSize := positiveIntOr(c.Query("page_size"), DefaultPageSize)
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return &PageParams{Page: page, PageSize: pageSize}
}

// NewPageInfo 根据总数计算分页信息
func NewPageInfo(page, pageSize int, total int64) *PageInfo {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return &PageInfo{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// GetOffset 计算offset
func (p *PageParams) GetOffset() int {
	return (p.Page - 1) * p.PageSize
}

// GetLimit 计算limit
func (p *PageParams) GetLimit() int {
	return p.PageSize
}

func positiveIntOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
