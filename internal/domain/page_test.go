package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cabfleet/taxi-api/internal/domain"
)

func intPtr(v int) *int { return &v }

func TestNewPaginationParams_Defaults(t *testing.T) {
	p := domain.NewPaginationParams(nil, nil)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 0, p.Offset())
}

func TestNewPaginationParams_CapsLimit(t *testing.T) {
	p := domain.NewPaginationParams(intPtr(2), intPtr(500))

	assert.Equal(t, 100, p.Limit)
	assert.Equal(t, 100, p.Offset())
}

func TestNewPaginationParams_RejectsNonPositive(t *testing.T) {
	p := domain.NewPaginationParams(intPtr(0), intPtr(-5))

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.Limit)
}

func TestPaginationParams_Offset(t *testing.T) {
	p := domain.NewPaginationParams(intPtr(3), intPtr(25))

	assert.Equal(t, 50, p.Offset())
}
