package collector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const snippetMaxRunes = 500

// snippetText 去掉 HTML 标签并压缩空白，按 rune 截断
func snippetText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	text := s
	if strings.ContainsAny(s, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
		if err == nil {
			text = doc.Text()
		}
	}
	return truncateRunes(strings.Join(strings.Fields(text), " "), snippetMaxRunes)
}

// truncateRunes 超过 limit 个字符时截断并追加省略号
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit]) + "…"
}
