package shared_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/l3montree-dev/cvesync/shared"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestNewPaged(t *testing.T) {
	t.Run("should compute hasNext and hasPrev", func(t *testing.T) {
		cases := []struct {
			page, pageSize   int
			total            int64
			hasNext, hasPrev bool
		}{
			{page: 1, pageSize: 10, total: 0, hasNext: false, hasPrev: false},
			{page: 1, pageSize: 10, total: 10, hasNext: false, hasPrev: false},
			{page: 1, pageSize: 10, total: 11, hasNext: true, hasPrev: false},
			{page: 2, pageSize: 10, total: 11, hasNext: false, hasPrev: true},
			{page: 3, pageSize: 5, total: 100, hasNext: true, hasPrev: true},
		}
		for _, c := range cases {
			paged := shared.NewPaged(shared.PageInfo{Page: c.page, PageSize: c.pageSize}, c.total, []int{})
			assert.Equal(t, c.hasNext, paged.HasNext, "page %d size %d total %d", c.page, c.pageSize, c.total)
			assert.Equal(t, c.hasPrev, paged.HasPrev, "page %d size %d total %d", c.page, c.pageSize, c.total)
		}
	})

	t.Run("should never return nil data", func(t *testing.T) {
		paged := shared.NewPaged[string](shared.PageInfo{Page: 1, PageSize: 10}, 0, nil)
		assert.NotNil(t, paged.Data)
		assert.Len(t, paged.Data, 0)
	})

	t.Run("should compute the offset", func(t *testing.T) {
		assert.Equal(t, 0, shared.PageInfo{Page: 1, PageSize: 10}.Offset())
		assert.Equal(t, 40, shared.PageInfo{Page: 5, PageSize: 10}.Offset())
	})
}

func TestGetPageInfo(t *testing.T) {
	newCtx := func(query string) shared.Context {
		req := httptest.NewRequest(http.MethodGet, "/cves/?"+query, nil)
		return echo.New().NewContext(req, httptest.NewRecorder())
	}

	t.Run("should use defaults", func(t *testing.T) {
		assert.Equal(t, shared.PageInfo{Page: 1, PageSize: 10}, shared.GetPageInfo(newCtx("")))
	})

	t.Run("should cap the page size", func(t *testing.T) {
		assert.Equal(t, shared.PageInfo{Page: 2, PageSize: 100}, shared.GetPageInfo(newCtx("page=2&pageSize=1000")))
	})

	t.Run("should ignore invalid values", func(t *testing.T) {
		assert.Equal(t, shared.PageInfo{Page: 1, PageSize: 10}, shared.GetPageInfo(newCtx("page=-3&pageSize=abc")))
	})
}

func TestIsValidCVEID(t *testing.T) {
	assert.True(t, shared.IsValidCVEID("CVE-2024-1234"))
	assert.True(t, shared.IsValidCVEID("cve-2024-123456"))
	assert.False(t, shared.IsValidCVEID("CVE-24-1234"))
	assert.False(t, shared.IsValidCVEID("CVE-2024-123"))
	assert.False(t, shared.IsValidCVEID("GHSA-xxxx"))
}

func TestCVEIDValidation(t *testing.T) {
	type payload struct {
		ID string `validate:"required,cveid"`
	}
	assert.NoError(t, shared.V.Struct(payload{ID: "CVE-2021-44228"}))
	assert.Error(t, shared.V.Struct(payload{ID: "not-a-cve"}))
}
