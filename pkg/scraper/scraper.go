package scraper

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/shouni/go-company-classifier/pkg/classifier"
	"github.com/shouni/go-company-classifier/pkg/company"
	"github.com/shouni/go-company-classifier/pkg/types"
)

// RecordBuilder は1社分のレコードを生成する機能のインターフェースです。
// *company.Builder がこれを満たします。
type RecordBuilder interface {
	Build(ctx context.Context, input types.CompanyInput) (*types.CompanyRecord, error)
}

// Runner は会社リストを入力順に1社ずつ処理し、結果テーブルを組み立てます。
// 並行処理は行いません。1社の処理が完了してから次の会社に進みます。
type Runner struct {
	builder    RecordBuilder
	classifier *classifier.Classifier
}

// NewRunner は Runner を初期化します。
// classifier は失敗行のための全フラグ false のレコード生成に使用します。
func NewRunner(builder RecordBuilder, c *classifier.Classifier) *Runner {
	return &Runner{
		builder:    builder,
		classifier: c,
	}
}

// Run はすべての会社を処理し、入力と同じ順序・同じ件数の ResultTable を返します。
//
// 1社の処理で返されたエラーやパニックはここで捕捉してログに出力し、
// Error 列に内容を記録した失敗行で置き換えます。残りの会社の処理は継続します。
// コンテキストがキャンセルされた場合は、そこまでの結果とエラーを返します。
func (r *Runner) Run(ctx context.Context, inputs []types.CompanyInput) (*types.ResultTable, error) {
	table := &types.ResultTable{Taxonomy: r.classifier.Taxonomy()}
	total := len(inputs)

	for i, input := range inputs {
		if err := ctx.Err(); err != nil {
			return table, fmt.Errorf("処理が中断されました (%d/%d 件処理済み): %w", i, total, err)
		}

		log.Printf("[%d/%d] 処理開始: %s", i+1, total, strings.TrimSpace(input.Domain))

		rec, err := r.buildSafely(ctx, input)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return table, fmt.Errorf("処理が中断されました (%d/%d 件処理済み): %w", i, total, ctxErr)
			}
			log.Printf("[%d/%d] スクレイピング中にエラーが発生しました (%s): %v", i+1, total, input.Domain, err)
			rec = r.failureRecord(input, err)
		}

		table.Append(rec)
	}

	ok, failed, relevant := table.Counts()
	log.Printf("完了: 成功 %d 件, 失敗 %d 件 (Relevant: %d 件)", ok, failed, relevant)
	return table, nil
}

// buildSafely は1社分のビルドを実行し、パニックをエラーに変換します。
func (r *Runner) buildSafely(ctx context.Context, input types.CompanyInput) (rec *types.CompanyRecord, err error) {
	defer func() {
		if p := recover(); p != nil {
			rec = nil
			err = fmt.Errorf("予期しないパニック: %v", p)
		}
	}()

	rec, err = r.builder.Build(ctx, input)
	if err == nil && rec == nil {
		err = fmt.Errorf("レコードが生成されませんでした")
	}
	return rec, err
}

// failureRecord は失敗マーカー付きの行を生成します。全フラグは false、会社名は入力ドメインから導出します。
func (r *Runner) failureRecord(input types.CompanyInput, err error) *types.CompanyRecord {
	rec := r.classifier.NewRecord(company.CompanyName(company.NormalizeURL(input.Domain)))
	rec.Label = input.Label
	rec.Err = err
	return rec
}
