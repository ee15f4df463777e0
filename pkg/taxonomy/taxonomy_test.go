package taxonomy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	tax := Default()

	assert.Equal(t,
		[]string{CategoryFoodBeverage, CategoryManufacturing, CategoryBrand, CategoryDistribution, CategoryProbiotics},
		tax.CategoryNames())
	assert.Equal(t, []string{CategoryProbiotics, CategoryDistribution}, tax.RelevantCategories())

	// 10 + 8 + 8 + 13 + 10
	assert.Len(t, tax.AllKeywords(), 49)
	assert.Contains(t, tax.AllKeywords(), "gut health")
	assert.Contains(t, tax.AllKeywords(), "ready-to-eat")
	assert.IsNonDecreasing(t, tax.AllKeywords())
}

func TestTaxonomy_IsImmutable(t *testing.T) {
	tax := Default()

	cats := tax.Categories()
	cats[0].Name = "changed"
	cats[0].Keywords[0] = "changed"
	kws := tax.AllKeywords()
	kws[0] = "changed"

	assert.Equal(t, CategoryFoodBeverage, tax.Categories()[0].Name)
	assert.Equal(t, "food processing", tax.Categories()[0].Keywords[0])
	assert.NotEqual(t, "changed", tax.AllKeywords()[0])
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		categories []Category
		relevant   []string
		wantErr    bool
	}{
		{"valid", []Category{{Name: "A", Keywords: []string{"x"}}}, []string{"A"}, false},
		{"no categories", nil, nil, true},
		{"empty name", []Category{{Name: " ", Keywords: []string{"x"}}}, nil, true},
		{"duplicate name", []Category{{Name: "A", Keywords: []string{"x"}}, {Name: "A", Keywords: []string{"y"}}}, nil, true},
		{"no keywords", []Category{{Name: "A", Keywords: []string{" "}}}, nil, true},
		{"unknown relevant", []Category{{Name: "A", Keywords: []string{"x"}}}, []string{"B"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tax, err := New(tt.categories, tt.relevant)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalid)
				assert.Nil(t, tax)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, tax)
		})
	}
}

func TestNew_TrimsAndDeduplicatesKeywords(t *testing.T) {
	tax, err := New([]Category{
		{Name: "A", Keywords: []string{" x ", "x", "y"}},
		{Name: "B", Keywords: []string{"y", "z"}},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "y"}, tax.Categories()[0].Keywords)
	assert.Equal(t, []string{"x", "y", "z"}, tax.AllKeywords())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid file with default relevant", func(t *testing.T) {
		path := filepath.Join(dir, "tax.yaml")
		content := `
categories:
  - name: Distribution
    keywords: [distributor, wholesaler]
  - name: Probiotics
    keywords: [probiotics]
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		tax, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"Distribution", "Probiotics"}, tax.CategoryNames())
		assert.Equal(t, []string{CategoryProbiotics, CategoryDistribution}, tax.RelevantCategories())
	})

	t.Run("explicit relevant", func(t *testing.T) {
		path := filepath.Join(dir, "custom.yaml")
		content := `
categories:
  - name: Tea
    keywords: [matcha]
relevant: [Tea]
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		tax, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"Tea"}, tax.RelevantCategories())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(dir, "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("categories: [\n"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}
