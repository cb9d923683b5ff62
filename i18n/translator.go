package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "class" or "keyword").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"invalid_keyword": "invalid keyword {keyword}",
		"class_missing":   "missing Class tag",
		"class_mismatch":  "class {class} does not match {expected}",
		"unknown_class":   "unknown class {class}",
		"parse_error":     "parse error",
		"invalid_type":    "invalid type",
		"duplicate_key":   "duplicate key",
		"truncated":       "truncated",
		"validation":      "value rejected by validator",
		"argument_count":  "wrong number of arguments",
		"argument_type":   "argument has the wrong type",
		"io_error":        "i/o error",
		"not_found":       "not found",
		"not_exposed":     "not exposed for remote access",
		"unsupported":     "unsupported operation",
	},
	"ja": {
		"invalid_keyword": "キーワード {keyword} が不正です",
		"class_missing":   "Class タグがありません",
		"class_mismatch":  "クラス {class} は {expected} と一致しません",
		"unknown_class":   "未知のクラス {class} です",
		"parse_error":     "解析エラー",
		"invalid_type":    "型が不正です",
		"duplicate_key":   "キーが重複しています",
		"truncated":       "打ち切られました",
		"validation":      "値が検証で拒否されました",
		"argument_count":  "引数の数が不正です",
		"argument_type":   "引数の型が不正です",
		"io_error":        "入出力エラー",
		"not_found":       "見つかりません",
		"not_exposed":     "リモートアクセスは許可されていません",
		"unsupported":     "サポートされていない操作です",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	for k, v := range data {
		msg = strings.ReplaceAll(msg, "{"+k+"}", v)
	}
	return msg
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	mu.Lock()
	defer mu.Unlock()
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
