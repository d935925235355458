package service

// 分页默认值与上限
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage 保证 (MaxPage-1)*MaxPageSize 不会溢出 int
	MaxPage = 10_000_000
)

// Pagination 偏移分页参数
// Offset 通常为 (Page-1)*PageSize，兼容 skip/limit 时由调用方直接给出
type Pagination struct {
	Page     int
	PageSize int
	Offset   int
}

// NewPagination 按页码构造分页参数，越界值回落到默认值
func NewPagination(page, pageSize int) Pagination {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}
	return Pagination{Page: page, PageSize: pageSize, Offset: (page - 1) * pageSize}
}

// FromSkipLimit 按 skip/limit 构造分页参数，页码由偏移量推算
func FromSkipLimit(skip, limit int) Pagination {
	if skip < 0 {
		skip = 0
	}
	if limit < 1 || limit > MaxPageSize {
		limit = DefaultPageSize
	}
	return Pagination{Page: skip/limit + 1, PageSize: limit, Offset: skip}
}
