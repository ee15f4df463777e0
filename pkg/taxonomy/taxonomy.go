package taxonomy

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// 参照タクソノミーのカテゴリ名
const (
	CategoryFoodBeverage  = "F&B"
	CategoryManufacturing = "Manufacturing"
	CategoryBrand         = "Brand"
	CategoryDistribution  = "Distribution"
	CategoryProbiotics    = "Probiotics"
)

// ErrInvalid はタクソノミー定義が不正であることを示します。
var ErrInvalid = errors.New("不正なタクソノミー定義")

// Category はカテゴリ名と、そのカテゴリを特徴づけるキーワード群です。
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Taxonomy はカテゴリからキーワード集合への不変のマッピングです。
// 生成後は変更されないため、各コンポーネントに明示的に渡して共有できます。
type Taxonomy struct {
	categories  []Category
	allKeywords []string
	relevant    []string
}

// file は YAML で記述されたタクソノミーの形式です。
type file struct {
	Categories []Category `yaml:"categories"`
	Relevant   []string   `yaml:"relevant"`
}

// Default は参照タクソノミー (5カテゴリ) を返します。
func Default() *Taxonomy {
	t, err := New(defaultCategories(), []string{CategoryProbiotics, CategoryDistribution})
	if err != nil {
		panic(fmt.Sprintf("taxonomy.Default: %v", err))
	}
	return t
}

func defaultCategories() []Category {
	return []Category{
		{
			Name: CategoryFoodBeverage,
			Keywords: []string{"food processing", "beverage", "snacks", "dairy", "bakery", "juices",
				"packaged foods", "ready-to-eat", "functional foods", "culinary"},
		},
		{
			Name: CategoryManufacturing,
			Keywords: []string{"manufacturer", "production", "factory", "assembly", "fabrication",
				"mass production", "packaging", "bottling"},
		},
		{
			Name: CategoryBrand,
			Keywords: []string{"brand", "product launch", "branding", "consumer trends", "trademark", "logo",
				"marketing", "advertising"},
		},
		{
			Name: CategoryDistribution,
			Keywords: []string{"distributor", "wholesaler", "supplier", "logistics", "supply chain",
				"sourcing", "warehousing", "fulfillment", "shipping", "delivery", "pharma", "pharmaceuticals", "drugs"},
		},
		{
			Name: CategoryProbiotics,
			Keywords: []string{"probiotics", "gut health", "digestive health", "fermented", "live cultures",
				"healthy bacteria", "prebiotics", "synbiotics", "microbiome", "supplements"},
		},
	}
}

// New はカテゴリ定義を検証し、そのコピーから Taxonomy を生成します。
// relevant には Relevant フラグを決定するカテゴリ名を指定します。
func New(categories []Category, relevant []string) (*Taxonomy, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: カテゴリが1つもありません", ErrInvalid)
	}

	seen := make(map[string]bool, len(categories))
	keywordSet := make(map[string]bool)
	copied := make([]Category, 0, len(categories))

	for i, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: %d番目のカテゴリ名が空です", ErrInvalid, i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: カテゴリ名が重複しています: %s", ErrInvalid, name)
		}
		seen[name] = true

		var keywords []string
		kwSeen := make(map[string]bool, len(c.Keywords))
		for _, kw := range c.Keywords {
			kw = strings.TrimSpace(kw)
			if kw == "" || kwSeen[kw] {
				continue
			}
			kwSeen[kw] = true
			keywords = append(keywords, kw)
			keywordSet[kw] = true
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("%w: カテゴリ %s にキーワードがありません", ErrInvalid, name)
		}
		copied = append(copied, Category{Name: name, Keywords: keywords})
	}

	for _, r := range relevant {
		if !seen[r] {
			return nil, fmt.Errorf("%w: Relevant に指定されたカテゴリが存在しません: %s", ErrInvalid, r)
		}
	}

	all := make([]string, 0, len(keywordSet))
	for kw := range keywordSet {
		all = append(all, kw)
	}
	sort.Strings(all)

	return &Taxonomy{
		categories:  copied,
		allKeywords: all,
		relevant:    append([]string(nil), relevant...),
	}, nil
}

// Load は YAML ファイルからタクソノミーを読み込みます。
// relevant が省略された場合は参照タクソノミーと同じ Probiotics / Distribution を使用します。
func Load(path string) (*Taxonomy, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("タクソノミーファイルの読み込みに失敗しました (%s): %w", path, err)
	}

	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("タクソノミーファイルのパースに失敗しました (%s): %w", path, err)
	}
	if f.Relevant == nil {
		f.Relevant = []string{CategoryProbiotics, CategoryDistribution}
	}
	return New(f.Categories, f.Relevant)
}

// Categories は宣言順のカテゴリ一覧のコピーを返します。
func (t *Taxonomy) Categories() []Category {
	out := make([]Category, len(t.categories))
	for i, c := range t.categories {
		out[i] = Category{Name: c.Name, Keywords: append([]string(nil), c.Keywords...)}
	}
	return out
}

// CategoryNames は宣言順のカテゴリ名を返します。
func (t *Taxonomy) CategoryNames() []string {
	names := make([]string, len(t.categories))
	for i, c := range t.categories {
		names[i] = c.Name
	}
	return names
}

// AllKeywords は全カテゴリのキーワードの和集合をソート済みで返します。
func (t *Taxonomy) AllKeywords() []string {
	return append([]string(nil), t.allKeywords...)
}

// RelevantCategories は Relevant フラグを決めるカテゴリ名を返します。
func (t *Taxonomy) RelevantCategories() []string {
	return append([]string(nil), t.relevant...)
}
