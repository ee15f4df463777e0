package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/shouni/go-company-classifier/pkg/classifier"
	"github.com/shouni/go-company-classifier/pkg/company"
	"github.com/shouni/go-company-classifier/pkg/extract"
	"github.com/shouni/go-company-classifier/pkg/input"
	"github.com/shouni/go-company-classifier/pkg/scraper"
	"github.com/shouni/go-company-classifier/pkg/taxonomy"
	"github.com/shouni/go-company-classifier/pkg/types"
)

// Pipeline は Fetcher とタクソノミーから組み立てた処理部品一式です。
type Pipeline struct {
	extractor  *extract.Extractor
	classifier *classifier.Classifier
	builder    *company.Builder
}

// New は依存性を初期化して Pipeline を返します。
func New(fetcher extract.Fetcher, tax *taxonomy.Taxonomy) (*Pipeline, error) {
	if tax == nil {
		return nil, fmt.Errorf("pipeline.New: Taxonomy cannot be nil")
	}

	// 1. Extractor の初期化 (Fetcher を包んで表示テキスト抽出を提供)
	extractor, err := extract.NewExtractor(fetcher)
	if err != nil {
		return nil, fmt.Errorf("Extractorの初期化エラー: %w", err)
	}

	// 2. Classifier と Builder の初期化
	c := classifier.New(tax)
	builder, err := company.NewBuilder(extractor, c)
	if err != nil {
		return nil, fmt.Errorf("Builderの初期化エラー: %w", err)
	}

	return &Pipeline{
		extractor:  extractor,
		classifier: c,
		builder:    builder,
	}, nil
}

// Taxonomy は使用中のタクソノミーを返します。
func (p *Pipeline) Taxonomy() *taxonomy.Taxonomy {
	return p.classifier.Taxonomy()
}

// ClassifyFile は入力ファイルを読み込み、全社を順に処理した結果テーブルを返します。
// 入力ファイルの不備はネットワークアクセスの前にエラーとして返します。
func (p *Pipeline) ClassifyFile(ctx context.Context, path string, opts input.Options) (*types.ResultTable, error) {
	// 1. 入力の読み込み
	inputs, err := input.Read(path, opts)
	if err != nil {
		return nil, fmt.Errorf("入力ファイルの読み込みエラー: %w", err)
	}
	log.Printf("入力ファイルを読み込みました: %s (%d 社)", path, len(inputs))

	// 2. 全社の処理
	return scraper.NewRunner(p.builder, p.classifier).Run(ctx, inputs)
}

// ClassifyDomain は1社分のドメインを処理してレコードを返します。
func (p *Pipeline) ClassifyDomain(ctx context.Context, domain string) (*types.CompanyRecord, error) {
	rec, err := p.builder.Build(ctx, types.CompanyInput{Domain: domain})
	if err != nil {
		return nil, fmt.Errorf("会社の処理エラー (%s): %w", domain, err)
	}
	return rec, nil
}

// PageText は指定されたページの表示テキストを取得します。
func (p *Pipeline) PageText(ctx context.Context, url string) (string, error) {
	text, err := p.extractor.FetchAndExtractText(ctx, url)
	if err != nil {
		return "", fmt.Errorf("コンテンツ抽出エラー (URL: %s): %w", url, err)
	}
	return text, nil
}

// MatchedByCategory はレコードで true になっているキーワードをカテゴリごとに返します。
// キーワードの順序はタクソノミーの定義順です。
func (p *Pipeline) MatchedByCategory(rec *types.CompanyRecord) map[string][]string {
	matched := make(map[string][]string)
	for _, cat := range p.Taxonomy().Categories() {
		for _, kw := range cat.Keywords {
			if rec.Keywords[kw] {
				matched[cat.Name] = append(matched[cat.Name], kw)
			}
		}
	}
	return matched
}
