package classifier

import (
	"regexp"
	"strings"
	"unicode"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/shouni/go-company-classifier/pkg/taxonomy"
	"github.com/shouni/go-company-classifier/pkg/types"
)

// Classifier はページ本文からキーワードを検出し、会社レコードのフラグを更新します。
//
// まず Aho-Corasick でケースフォールディングした本文を1回走査して候補キーワードを
// 絞り込み、候補だけを単語境界付きの正規表現で確定させます。フォールディングは
// (?i) と同じ単純ケースフォールディングなので、結果は全キーワードの正規表現を
// 個別に実行した場合と同じです。
type Classifier struct {
	tax      *taxonomy.Taxonomy
	keywords []string // AllKeywords と同じ順序
	patterns []*regexp.Regexp
	matcher  *ahocorasick.Matcher
	groups   [][]int // matcher の辞書インデックス -> keywords のインデックス
}

// New はタクソノミーのキーワードごとに正規表現を事前コンパイルした Classifier を生成します。
func New(tax *taxonomy.Taxonomy) *Classifier {
	keywords := tax.AllKeywords()
	patterns := make([]*regexp.Regexp, len(keywords))

	// ケースフォールディング後に同じになるキーワードは辞書上で1つにまとめる
	var dictionary []string
	var groups [][]int
	position := make(map[string]int, len(keywords))
	for i, kw := range keywords {
		patterns[i] = wordPattern(kw)
		folded := foldCase(kw)
		p, ok := position[folded]
		if !ok {
			p = len(dictionary)
			position[folded] = p
			dictionary = append(dictionary, folded)
			groups = append(groups, nil)
		}
		groups[p] = append(groups[p], i)
	}

	return &Classifier{
		tax:      tax,
		keywords: keywords,
		patterns: patterns,
		matcher:  ahocorasick.NewStringMatcher(dictionary),
		groups:   groups,
	}
}

// foldCase は各文字を unicode.SimpleFold の同値類で最小の文字に置き換えます。
// regexp の (?i) と同じ同値関係なので、"ſ" (U+017F) と "s" も一致します。
func foldCase(s string) string {
	return strings.Map(func(r rune) rune {
		lowest := r
		for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
			if f < lowest {
				lowest = f
			}
		}
		return lowest
	}, s)
}

// wordPattern は大文字小文字を区別しない単語単位の一致パターンを返します。
func wordPattern(word string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
}

// Taxonomy は分類に使用しているタクソノミーを返します。
func (c *Classifier) Taxonomy() *taxonomy.Taxonomy {
	return c.tax
}

// NewRecord はすべてのキーワード・カテゴリフラグを false で初期化したレコードを返します。
func (c *Classifier) NewRecord(companyName string) *types.CompanyRecord {
	rec := &types.CompanyRecord{
		Keywords:    make(map[string]bool, len(c.keywords)),
		Categories:  make(map[string]bool),
		CompanyName: companyName,
	}
	for _, kw := range c.keywords {
		rec.Keywords[kw] = false
	}
	c.recompute(rec)
	return rec
}

// Matches は本文中に単語単位で出現するキーワードを AllKeywords の順序で返します。
func (c *Classifier) Matches(text string) []string {
	if text == "" {
		return nil
	}

	hits := c.matcher.MatchThreadSafe([]byte(foldCase(text)))
	if len(hits) == 0 {
		return nil
	}

	candidate := make([]bool, len(c.keywords))
	for _, idx := range hits {
		if idx < 0 || idx >= len(c.groups) {
			continue
		}
		for _, i := range c.groups[idx] {
			candidate[i] = true
		}
	}

	var matched []string
	for i, ok := range candidate {
		if ok && c.patterns[i].MatchString(text) {
			matched = append(matched, c.keywords[i])
		}
	}
	return matched
}

// Classify は本文を走査してレコードを更新し、同じレコードを返します。
// 一度 true になったフラグは false に戻りません。カテゴリと Relevant は
// 蓄積済みのキーワードフラグから毎回再計算します。
func (c *Classifier) Classify(text string, rec *types.CompanyRecord) *types.CompanyRecord {
	if rec.Keywords == nil {
		rec.Keywords = make(map[string]bool, len(c.keywords))
	}
	for _, kw := range c.Matches(text) {
		rec.Keywords[kw] = true
	}
	c.recompute(rec)
	return rec
}

// recompute はキーワードフラグからカテゴリフラグと Relevant を導出します。
func (c *Classifier) recompute(rec *types.CompanyRecord) {
	if rec.Categories == nil {
		rec.Categories = make(map[string]bool)
	}
	for _, cat := range c.tax.Categories() {
		found := false
		for _, kw := range cat.Keywords {
			if rec.Keywords[kw] {
				found = true
				break
			}
		}
		rec.Categories[cat.Name] = found
	}

	rec.Relevant = false
	for _, name := range c.tax.RelevantCategories() {
		if rec.Categories[name] {
			rec.Relevant = true
			break
		}
	}
}
