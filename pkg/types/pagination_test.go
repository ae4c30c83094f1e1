package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	assert.Equal(t, 3, NewPagination(21, 1, 10).TotalPages)
	assert.Equal(t, 2, NewPagination(20, 1, 10).TotalPages)
	assert.Equal(t, 0, NewPagination(5, 1, 0).TotalPages)
}
