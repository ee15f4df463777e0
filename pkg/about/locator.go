package about

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// absolutePrefix で始まる href はそのまま使用し、それ以外は元ページのURLと結合します。
const absolutePrefix = "https://"

// aboutPattern は単語としての "about" に大文字小文字を区別せず一致します。
// "roundabout" のような語の一部には一致しません。
var aboutPattern = regexp.MustCompile(`(?i)\babout\b`)

// Locate はホームページ内の about ページ候補リンクを文書順に返します。
// アンカーの表示テキストまたは href に "about" が単語として含まれるものが候補です。
// href は加工せずにそのまま返します (相対パスの場合もあります)。
func Locate(doc *goquery.Document) []string {
	links := []string{}
	if doc == nil {
		return links
	}

	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		if aboutPattern.MatchString(s.Text()) || aboutPattern.MatchString(href) {
			links = append(links, href)
		}
	})
	return links
}

// Resolve は候補リンクを取得可能な絶対URLに変換します。
// "https://" で始まる場合はそのまま、それ以外は base に対して解決します。
func Resolve(base, href string) (string, error) {
	if strings.HasPrefix(href, absolutePrefix) {
		return href, nil
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("ベースURLのパースエラー (%s): %w", base, err)
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("リンクのパースエラー (%s): %w", href, err)
	}
	return baseURL.ResolveReference(ref).String(), nil
}

// IsFetchable は解決済みURLが http/https で取得可能かどうかを返します。
// mailto: や javascript: のリンクは候補から除外するために使用します。
func IsFetchable(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
