// Package auth 判斷誰可以編輯食譜。
package auth

import (
	"crypto/subtle"
	"strings"
)

// Identity 呼叫者身分
type Identity struct {
	Login string
	Code  string
}

// Authorizer 編輯權限判斷
type Authorizer interface {
	IsEditAllowed(id Identity) bool
}

// CodeList 由 "login:code" 組成的靜態名單
type CodeList struct {
	codes map[string]string
}

// ParseCodes 解析 "login:code,login2:code2"；格式不完整的項目會被略過
func ParseCodes(raw string) *CodeList {
	codes := make(map[string]string)
	for _, entry := range strings.Split(raw, ",") {
		login, code, ok := strings.Cut(strings.TrimSpace(entry), ":")
		login, code = strings.TrimSpace(login), strings.TrimSpace(code)
		if !ok || login == "" || code == "" {
			continue
		}
		codes[login] = code
	}
	return &CodeList{codes: codes}
}

// Enabled 名單是否非空；空名單代表停用編輯
func (l *CodeList) Enabled() bool {
	return len(l.codes) > 0
}

// Len 名單人數
func (l *CodeList) Len() int {
	return len(l.codes)
}

// IsLoginAllowed 帳號是否在名單中
func (l *CodeList) IsLoginAllowed(login string) bool {
	if login == "" || len(l.codes) == 0 {
		return false
	}
	_, ok := l.codes[login]
	return ok
}

// Verify 以固定時間比較代碼
func (l *CodeList) Verify(login, code string) bool {
	expected, ok := l.codes[login]
	if !ok || code == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(code)) == 1
}

// IsEditAllowed 帳號在名單中且代碼正確
func (l *CodeList) IsEditAllowed(id Identity) bool {
	return l.IsLoginAllowed(id.Login) && l.Verify(id.Login, id.Code)
}
