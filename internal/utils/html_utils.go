package utils

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// EnhanceHTMLContent 为图片和外链补充安全属性，代码块标注语言
func EnhanceHTMLContent(htmlStr string) string {
	if htmlStr == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return htmlStr
	}

	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		s.SetAttr("referrerpolicy", "no-referrer")
		s.SetAttr("loading", "lazy")
	})

	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
			s.SetAttr("rel", "nofollow noopener noreferrer")
		}
	})

	// goldmark 输出 <code class="language-go">，提到 <pre> 上方便前端高亮
	doc.Find("pre > code").Each(func(i int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		for _, c := range strings.Fields(class) {
			if lang, ok := strings.CutPrefix(c, "language-"); ok {
				s.Parent().SetAttr("data-lang", lang)
				break
			}
		}
	})

	// goquery renders full document tags if missing, we just want the body content
	html, _ := doc.Find("body").Html()
	if html == "" {
		html, _ = doc.Html()
	}
	return html
}
