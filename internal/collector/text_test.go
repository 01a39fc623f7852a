package collector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnippetTextStripsHTML(t *testing.T) {
	assert.Equal(t, "Breaking: markets rally", snippetText("<p>Breaking: <a href='#'>markets</a>\n rally</p>"))
	assert.Equal(t, "plain text", snippetText("  plain   text "))
	assert.Equal(t, "Tom & Jerry", snippetText("Tom &amp; Jerry"))
	assert.Equal(t, "", snippetText("   "))
}

func TestTruncateRunesHandlesChineseAndEllipsis(t *testing.T) {
	s := "你好，世界，这是一个很长的中文句子，用来测试截断逻辑。"
	out := truncateRunes(s, 5)
	assert.Len(t, []rune(out), 6) // 5 个字符 + 1 个省略号
	assert.True(t, strings.HasSuffix(out, "…"))

	// limit 大于长度时不应截断
	assert.Equal(t, "短文本", truncateRunes("短文本", 10))
}
