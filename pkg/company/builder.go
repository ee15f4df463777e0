package company

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/shouni/go-company-classifier/pkg/about"
	"github.com/shouni/go-company-classifier/pkg/classifier"
	"github.com/shouni/go-company-classifier/pkg/extract"
	"github.com/shouni/go-company-classifier/pkg/httpclient"
	"github.com/shouni/go-company-classifier/pkg/types"
)

const (
	// ホームページURLを組み立てるための固定のスキームとクエリマーカー
	schemePrefix = "https://"
	queryMarker  = "?"
)

// ErrEmptyDomain は入力ドメインが空であることを示します。
var ErrEmptyDomain = errors.New("ドメインが空です")

// Builder は1社分の処理 (ホームページ取得 → about ページ探索 → 各ページの分類) を組み立てます。
type Builder struct {
	fetcher    extract.Fetcher
	classifier *classifier.Classifier
}

// NewBuilder は Builder を生成します。
func NewBuilder(fetcher extract.Fetcher, c *classifier.Classifier) (*Builder, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("company.NewBuilder: Fetcher cannot be nil")
	}
	if c == nil {
		return nil, fmt.Errorf("company.NewBuilder: Classifier cannot be nil")
	}
	return &Builder{fetcher: fetcher, classifier: c}, nil
}

// NormalizeURL はドメインをホームページURLに変換します。
// 前後の空白を除去し、スキームを付与し、末尾に空のクエリマーカーを付けます。
func NormalizeURL(domain string) string {
	return schemePrefix + strings.TrimSpace(domain) + queryMarker
}

// CompanyName は正規化済みURLからスキームと末尾のクエリマーカーを取り除いた会社名を返します。
func CompanyName(normalizedURL string) string {
	return strings.TrimSuffix(strings.TrimPrefix(normalizedURL, schemePrefix), queryMarker)
}

// Build は1社分のレコードを生成します。
//
// ホームページの取得失敗や about ページが見つからない場合は、全フラグが false で
// 会社名だけが設定されたレコードを返します。これはエラーではありません。
// エラーを返すのは入力自体が不正な場合とコンテキストがキャンセルされた場合だけです。
func (b *Builder) Build(ctx context.Context, input types.CompanyInput) (*types.CompanyRecord, error) {
	// 1. ドメインの正規化
	if strings.TrimSpace(input.Domain) == "" {
		return nil, fmt.Errorf("%w (行: %d)", ErrEmptyDomain, input.Row)
	}
	link := NormalizeURL(input.Domain)
	if _, err := url.Parse(link); err != nil {
		return nil, fmt.Errorf("ホームページURLのパースエラー (%s): %w", link, err)
	}

	// 2. 全フラグ false のレコードを用意 (会社名は常に設定)
	rec := b.classifier.NewRecord(CompanyName(link))
	rec.Label = input.Label

	log.Printf("スクレイピング中: %s", link)

	// 3. ホームページの取得
	home, err := b.fetcher.FetchDocument(ctx, link)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return rec, ctxErr
		}
		if httpclient.IsStatusError(err) {
			log.Printf("ホームページが不正なステータスを返しました: %s", link)
		} else {
			log.Printf("ホームページのデータ取得に失敗しました: %s", link)
		}
		return rec, nil
	}

	// 4. about ページ候補の探索
	candidates := about.Locate(home)
	if len(candidates) == 0 {
		log.Printf("about ページが見つかりませんでした: %s", link)
		return rec, nil
	}

	// 5. 候補ごとに取得と分類
	if err := b.scanAboutPages(ctx, link, candidates, rec); err != nil {
		return rec, err
	}
	return rec, nil
}

// scanAboutPages は候補リンクを順に取得し、取得できたページでレコードを更新します。
// 個別ページの取得失敗はその会社全体の失敗にはなりません。
func (b *Builder) scanAboutPages(ctx context.Context, base string, candidates []string, rec *types.CompanyRecord) error {
	scanned := make(map[string]bool, len(candidates))

	for _, href := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}

		pageURL, err := about.Resolve(base, href)
		if err != nil {
			log.Printf("about ページのURLを解決できません: %v", err)
			continue
		}
		if !about.IsFetchable(pageURL) {
			continue
		}
		// 分類は冪等なので、同じURLを再度走査しても結果は変わらない
		if scanned[pageURL] {
			continue
		}
		scanned[pageURL] = true

		doc, err := b.fetcher.FetchDocument(ctx, pageURL)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			log.Printf("about ページをスキップします: %s", pageURL)
			continue
		}

		b.classify(doc, rec)
		rec.Pages = append(rec.Pages, pageURL)
	}
	return nil
}

func (b *Builder) classify(doc *goquery.Document, rec *types.CompanyRecord) {
	b.classifier.Classify(extract.VisibleText(doc), rec)
}
