package shared

import (
	"strconv"
)

func GetParam(ctx Context, param string) string {
	v := ctx.Param(param)
	if v == "" {
		fallback, ok := ctx.Get(param).(string)
		if !ok {
			return ""
		}
		return fallback
	}
	return v
}

type PageInfo struct {
	PageSize int `json:"pageSize"`
	Page     int `json:"page"`
}

func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func (p PageInfo) ApplyOnDB(db DB) DB {
	return db.Offset(p.Offset()).Limit(p.PageSize)
}

type Paged[T any] struct {
	PageInfo
	Total   int64 `json:"total"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
	Data    []T   `json:"data"`
}

func NewPaged[T any](pageInfo PageInfo, total int64, data []T) Paged[T] {
	if data == nil {
		data = []T{}
	}
	return Paged[T]{
		PageInfo: pageInfo,
		Total:    total,
		HasNext:  int64(pageInfo.Page)*int64(pageInfo.PageSize) < total,
		HasPrev:  pageInfo.Page > 1,
		Data:     data,
	}
}

const maxPageSize = 100

func GetPageInfo(ctx Context) PageInfo {
	page, _ := strconv.Atoi(ctx.QueryParam("page"))
	if page <= 0 {
		page = 1
	}

	pageSize, _ := strconv.Atoi(ctx.QueryParam("pageSize"))
	switch {
	case pageSize > maxPageSize:
		pageSize = maxPageSize
	case pageSize <= 0:
		pageSize = 10
	}

	return PageInfo{
		Page:     page,
		PageSize: pageSize,
	}
}

// SetRequestID and GetRequestID carry the request id assigned by the request id middleware.
func SetRequestID(ctx Context, id string) {
	ctx.Set("requestID", id)
}

func GetRequestID(ctx Context) string {
	id, _ := ctx.Get("requestID").(string)
	return id
}
