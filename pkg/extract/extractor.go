package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	textUtils "github.com/shouni/go-utils/text"
	"golang.org/x/net/html"
)

// ----------------------------------------------------------------------
// 依存性の定義 (DIP)
// ----------------------------------------------------------------------

// Fetcher は、HTMLドキュメントを取得する機能のインターフェースを定義します。
// Extractor は、この抽象に依存します。
type Fetcher interface {
	FetchDocument(ctx context.Context, url string) (*goquery.Document, error)
}

// Extractor は、Fetcher を使ってページ取得と表示テキスト抽出を管理します。
type Extractor struct {
	fetcher Fetcher
}

// NewExtractor は、新しいExtractorのインスタンスを生成します。
func NewExtractor(fetcher Fetcher) (*Extractor, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("extract.NewExtractor: Fetcher cannot be nil")
	}
	return &Extractor{
		fetcher: fetcher,
	}, nil
}

// ----------------------------------------------------------------------
// 定数定義 (解析関連のみ)
// ----------------------------------------------------------------------

// invisibleSelectors は表示されないテキストを持つ要素です。
const invisibleSelectors = "script, style, noscript, template, svg"

// ----------------------------------------------------------------------
// メイン関数 (メソッド化)
// ----------------------------------------------------------------------

// FetchDocument はページを取得し、goquery.Documentを返します。
func (e *Extractor) FetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	return e.fetcher.FetchDocument(ctx, url)
}

// FetchAndExtractText は指定されたURLからページを取得し、表示テキストを抽出します。
func (e *Extractor) FetchAndExtractText(ctx context.Context, url string) (string, error) {
	doc, err := e.fetcher.FetchDocument(ctx, url)
	if err != nil {
		return "", err
	}
	return VisibleText(doc), nil
}

// VisibleText はドキュメントから表示テキストを抽出し、空白を正規化して返します。
// テキストノードは空白で区切って連結するため、隣接する要素の語が結合されることはありません。
// 元のドキュメントは変更しません。
func VisibleText(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}

	// 1. 非表示要素を除去したコピーを作成
	root := doc.Selection.Clone()
	root.Find(invisibleSelectors).Remove()

	// 2. テキストノードを文書順に収集
	var parts []string
	for _, n := range root.Nodes {
		collectText(n, &parts)
	}

	// 3. 空白の正規化
	return textUtils.NormalizeText(strings.Join(parts, " "))
}

// collectText はノード配下のテキストノードを深さ優先で収集します。
func collectText(n *html.Node, parts *[]string) {
	switch n.Type {
	case html.TextNode:
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	case html.CommentNode, html.DoctypeNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
