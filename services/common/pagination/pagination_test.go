package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func ctxWithQuery(q string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+q, nil)
	return c
}

func TestParse(t *testing.T) {
	tests := []struct {
		query string
		want  Params
	}{
		{"", Params{Page: 1, Limit: 10}},
		{"page=3&limit=25", Params{Page: 3, Limit: 25}},
		{"page=0&limit=-4", Params{Page: 1, Limit: 10}},
		{"page=abc&limit=1000", Params{Page: 1, Limit: 100}},
		{"page=2&pageSize=9", Params{Page: 2, Limit: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(ctxWithQuery(tt.query)))
		})
	}
}

func TestNewMeta(t *testing.T) {
	m := NewMeta(Params{Page: 2, Limit: 9}, 20)
	assert.Equal(t, 3, m.TotalPages)
	assert.True(t, m.HasMore)

	m = NewMeta(Params{Page: 3, Limit: 9}, 20)
	assert.False(t, m.HasMore)

	m = NewMeta(Params{Page: 1, Limit: 10}, 0)
	assert.Equal(t, 0, m.TotalPages)
	assert.False(t, m.HasMore)
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{3, 4}, Slice(items, Params{Page: 2, Limit: 2}))
	assert.Equal(t, []int{5}, Slice(items, Params{Page: 3, Limit: 2}))
	assert.Equal(t, []int{}, Slice(items, Params{Page: 4, Limit: 2}))
}
