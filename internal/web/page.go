// Package web はバックエンドから配信するログイン/サインアップ画面を提供します。
package web

import (
	_ "embed"

	"github.com/a-h/templ"
)

//go:embed index.html
var indexHTML string

// LoginPage はログイン/サインアップフォームのコンポーネントを返します。
func LoginPage() templ.Component {
	return templ.Raw(indexHTML)
}
