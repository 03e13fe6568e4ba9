// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService は車両説明文などのユーザー入力テキストをサニタイズし、
// XSS攻撃などのセキュリティリスクからユーザーを保護する。
// bluemondayライブラリの厳格ポリシーで、HTMLタグをすべて除去する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はユーザー入力テキストのサニタイズ機能のインターフェースを定義する。
// 車両リスティングの登録・更新時、レンタルAPIへ転送する前に使用される。
type ContentSanitizerService interface {
	// Sanitize はテキストからHTMLタグをすべて除去して返す。
	// 説明文はプレーンテキストとして扱うため、script等の危険タグに限らず
	// あらゆるタグを除去する。前後の空白もトリムする。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// bluemondayのStrictPolicy（全タグ除去）を使用する。
// 説明文はUIでプレーンテキストとして表示されるため、許可するタグはない。
func NewContentSanitizer() *contentSanitizer {
	return &contentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はテキストからHTMLタグをすべて除去して返す。
func (s *contentSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}
