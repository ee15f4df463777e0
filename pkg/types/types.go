package types

import "github.com/shouni/go-company-classifier/pkg/taxonomy"

// 出力テーブルの固定列名
const (
	ColumnRelevant    = "Relevant"
	ColumnCompanyName = "Company Name"
	ColumnError       = "Error"
)

// CompanyInput は入力ファイルの1行 (会社向けラベルとドメイン) を表します。
type CompanyInput struct {
	Row    int    // 入力ファイル上の行番号 (1始まり、エラー報告用)
	Label  string // 3列目: 会社向けラベル
	Domain string // 4列目: ドメイン
}

// CompanyRecord は1社分の分類結果です。
// about ページを走査するたびに更新され、その会社の処理完了後は変更されません。
type CompanyRecord struct {
	Keywords    map[string]bool // キーワードごとの検出フラグ
	Categories  map[string]bool // カテゴリごとのフラグ (構成キーワードのOR)
	Relevant    bool            // Relevant カテゴリ (既定: Probiotics / Distribution) のいずれかが真
	CompanyName string          // 入力ドメインから導出した会社名

	Label string   // 入力の会社向けラベル (ログ用)
	Pages []string // 取得・走査できた about ページのURL
	Err   error    // 予期しないエラーで処理できなかった場合の失敗マーカー
}

// Failed は予期しないエラーによる失敗行かどうかを返します。
func (r *CompanyRecord) Failed() bool {
	return r.Err != nil
}

// ResultTable は入力順に並んだ会社ごとの結果です。失敗した会社も1行として含みます。
type ResultTable struct {
	Taxonomy *taxonomy.Taxonomy
	Records  []*CompanyRecord
}

// Append はレコードを末尾に追加します。
func (t *ResultTable) Append(r *CompanyRecord) {
	t.Records = append(t.Records, r)
}

// Counts は成功件数と失敗件数、Relevant な会社の件数を返します。
func (t *ResultTable) Counts() (ok, failed, relevant int) {
	for _, r := range t.Records {
		if r.Failed() {
			failed++
			continue
		}
		ok++
		if r.Relevant {
			relevant++
		}
	}
	return ok, failed, relevant
}
