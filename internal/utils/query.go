package utils

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// SearchQuery is the structured form of a raw search string.
type SearchQuery struct {
	Title    string   `json:"title,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	UserID   *uint    `json:"user,omitempty"`
	Username string   `json:"username,omitempty"`
}

// Empty reports whether q carries no filter at all.
func (q SearchQuery) Empty() bool {
	return q.Title == "" && len(q.Tags) == 0 && q.UserID == nil && q.Username == ""
}

var tagPattern = regexp.MustCompile(`\[([^\[\]]*)\]`)

// ParseQuery 解析搜索字符串，永不失败:
//
//	[tag]        tag filter, any number, deduplicated
//	user:<id>    author by id
//	@<username>  author by username
//	anything else is the title substring
//
// Tokens that look like a filter but do not parse (user:abc, a bare @, [])
// contribute nothing. Stray brackets and the "+" the tag links put between
// tags are dropped.
func ParseQuery(raw string) SearchQuery {
	var q SearchQuery

	// 非法 UTF-8 与 NUL 字节数据库不接受，直接丢弃
	raw = strings.ReplaceAll(strings.ToValidUTF8(raw, ""), "\x00", "")

	seen := make(map[string]bool)
	for _, m := range tagPattern.FindAllStringSubmatch(raw, -1) {
		name := strings.TrimSpace(m[1])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		q.Tags = append(q.Tags, name)
	}
	sort.Strings(q.Tags)

	rest := tagPattern.ReplaceAllString(raw, " ")
	rest = strings.NewReplacer("[", " ", "]", " ").Replace(rest)

	var title []string
	for _, tok := range strings.Fields(rest) {
		switch {
		case strings.Trim(tok, "+") == "":
			continue
		case strings.HasPrefix(tok, "user:"):
			id, err := strconv.ParseUint(strings.TrimPrefix(tok, "user:"), 10, 64)
			if err == nil && id > 0 && q.UserID == nil {
				uid := uint(id)
				q.UserID = &uid
			}
		case strings.HasPrefix(tok, "@"):
			if name := strings.TrimPrefix(tok, "@"); name != "" && q.Username == "" {
				q.Username = name
			}
		default:
			title = append(title, tok)
		}
	}
	q.Title = strings.Join(title, " ")

	return q
}
