package service

import (
	"regexp"
	"strings"
)

// Notice 从施工通告文本中提取的字段
type Notice struct {
	NoticeID          string
	Department        string
	WorkType          string
	Location          string
	ExecutingAgency   string
	ContractorContact string
}

type noticeField struct {
	key      string
	pattern  *regexp.Regexp
	required bool
	set      func(n *Notice, v string)
}

// labelPattern 匹配 "label : value"，value 为该行剩余部分
func labelPattern(label string) *regexp.Regexp {
	words := strings.Fields(label)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b` + strings.Join(words, `\s+`) + `[ \t]*:[ \t]*([^\r\n]*)`)
}

var noticeFields = []noticeField{
	{"notice_id", labelPattern("Notice ID"), true, func(n *Notice, v string) { n.NoticeID = v }},
	{"department", labelPattern("Department"), true, func(n *Notice, v string) { n.Department = v }},
	{"work_type", labelPattern("Work Type"), true, func(n *Notice, v string) { n.WorkType = v }},
	{"location", labelPattern("Location"), true, func(n *Notice, v string) { n.Location = v }},
	{"executing_agency", labelPattern("Executing Agency"), false, func(n *Notice, v string) { n.ExecutingAgency = v }},
	{"contractor_contact", labelPattern("Contractor Contact"), false, func(n *Notice, v string) { n.ContractorContact = v }},
}

// ParseNotice 按标签提取字段，返回缺失的必填字段（按固定顺序）
// 同一标签出现多次时取第一次，值为空视为缺失
func ParseNotice(text string) (Notice, []string) {
	var n Notice
	var missing []string

	for _, f := range noticeFields {
		var value string
		if m := f.pattern.FindStringSubmatch(text); m != nil {
			value = strings.TrimSpace(m[1])
		}
		if value == "" {
			if f.required {
				missing = append(missing, f.key)
			}
			continue
		}
		f.set(&n, value)
	}

	return n, missing
}
