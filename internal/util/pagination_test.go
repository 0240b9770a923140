package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name                     string
		page, size               int
		wantPage, wantSize, from int
	}{
		{"defaults", 0, 0, 1, DefaultPageSize, 0},
		{"negative page", -3, 10, 1, 10, 0},
		{"second page", 2, 10, 2, 10, 10},
		{"clamped size", 3, 500, 3, MaxPageSize, 200},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			page, size, from := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantSize, size)
			assert.Equal(t, tt.from, from)
		})
	}
}

func TestPages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Pages(0, 10))
	assert.Equal(t, 1, Pages(10, 10))
	assert.Equal(t, 2, Pages(11, 10))
	assert.Equal(t, 0, Pages(5, 0))
}
