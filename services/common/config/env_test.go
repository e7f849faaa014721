package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvList(t *testing.T) {
	t.Setenv("TEST_ORIGINS", " https://a.example, ,https://b.example ")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, GetEnvList("TEST_ORIGINS", ""))
	assert.Equal(t, []string{"http://localhost:3000"}, GetEnvList("TEST_ORIGINS_UNSET", "http://localhost:3000"))
	assert.Nil(t, GetEnvList("TEST_ORIGINS_UNSET", ""))
}
