package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeClampsValues(t *testing.T) {
	p := PaginationParams{Page: -1, PageSize: 0, Order: "sideways"}.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PageSize)
	assert.Equal(t, "desc", p.Order)

	p = PaginationParams{Page: 3, PageSize: 500, Order: "asc"}.Normalize()
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 100, p.PageSize)
	assert.Equal(t, "asc", p.Order)
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, PaginationParams{Page: 1, PageSize: 10}.Offset())
	assert.Equal(t, 40, PaginationParams{Page: 5, PageSize: 10}.Offset())
}

func TestBuildPaginationMeta(t *testing.T) {
	meta := BuildPaginationMeta(2, 10, 35)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 35, meta.Total)
	assert.Equal(t, 4, meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrev)

	meta = BuildPaginationMeta(1, 10, 0)
	assert.Equal(t, 0, meta.TotalPages)
	assert.False(t, meta.HasNext)
	assert.False(t, meta.HasPrev)
}

func TestContextCarriers(t *testing.T) {
	ctx := context.Background()

	_, ok := GetUserID(ctx)
	assert.False(t, ok)

	ctx = WithUserID(ctx, "user-1")
	ctx = WithRequestID(ctx, "req-1")
	start := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	ctx = WithStartTime(ctx, start)

	userID, ok := GetUserID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "user-1", userID)

	requestID, ok := GetRequestID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "req-1", requestID)

	got, ok := GetStartTime(ctx)
	assert.True(t, ok)
	assert.Equal(t, start, got)
}
