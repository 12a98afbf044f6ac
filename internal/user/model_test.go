package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSkills(t *testing.T) {
	got := normalizeSkills([]string{" go ", "postgres", "go", "", "  "})
	assert.Equal(t, []string{"go", "postgres"}, got)
}

func TestNormalizeSkillsEmpty(t *testing.T) {
	assert.Empty(t, normalizeSkills(nil))
	assert.Empty(t, normalizeSkills([]string{"", " "}))
}
