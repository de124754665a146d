package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	assert.Equal(t, "German", Name("de"))
	assert.Equal(t, "Chinese (Simplified)", Name("zh"))
	assert.Equal(t, "English", Name("xx"))
	assert.Equal(t, "English", Name(""))
}

func TestCodes(t *testing.T) {
	assert.Equal(t, []string{"de", "en", "hi", "ja", "ko", "ta", "te", "zh"}, Codes())
	assert.True(t, Supported("te"))
	assert.False(t, Supported("fr"))
}
