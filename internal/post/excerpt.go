package post

import (
	"strings"

	"golang.org/x/net/html"
)

// defaultExcerptRunes は記事一覧に表示する抜粋の最大文字数。
const defaultExcerptRunes = 200

// Excerpt はサニタイズ済みHTMLの本文からプレーンテキストの抜粋を生成する。
// テキストノードを文書順に連結し、連続する空白を1つに畳み、
// maxRunes文字を超える場合は切り詰めて省略記号を付ける。
// パースに失敗した場合は空文字列を返す。
func Excerpt(body string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = defaultExcerptRunes
	}

	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return ""
	}

	var b strings.Builder
	collectText(doc, &b)

	text := strings.Join(strings.Fields(b.String()), " ")
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes]) + "…"
}

// collectText はノードツリーを走査してテキストノードを連結する。
// script/style配下のテキストは除外する（サニタイズ済み入力では現れない想定）。
func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteString(" ")
		return
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
