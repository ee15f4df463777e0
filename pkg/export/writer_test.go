package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/shouni/go-company-classifier/pkg/classifier"
	"github.com/shouni/go-company-classifier/pkg/taxonomy"
	"github.com/shouni/go-company-classifier/pkg/types"
)

// newTestTable は正常な会社1件と失敗した会社1件を含むテーブルを返します。
func newTestTable() *types.ResultTable {
	c := classifier.New(taxonomy.Default())
	table := &types.ResultTable{Taxonomy: c.Taxonomy()}

	ok := c.Classify("We are a wholesaler of dairy products.", c.NewRecord("acme.com"))
	table.Append(ok)

	failed := c.NewRecord("broken.example")
	failed.Err = errors.New("予期しないパニック: boom")
	table.Append(failed)

	return table
}

func TestColumns(t *testing.T) {
	tax := taxonomy.Default()
	cols := Columns(tax)

	expected := map[string]bool{}
	for _, kw := range tax.AllKeywords() {
		expected[kw] = true
	}
	for _, name := range tax.CategoryNames() {
		expected[name] = true
	}
	expected[types.ColumnRelevant] = true
	expected[types.ColumnCompanyName] = true
	expected[types.ColumnError] = true

	got := map[string]bool{}
	for _, c := range cols {
		assert.False(t, got[c], "列名が重複しています: %s", c)
		got[c] = true
	}
	assert.Equal(t, expected, got)

	// 固定列は末尾に並ぶ
	n := len(cols)
	assert.Equal(t, []string{types.ColumnRelevant, types.ColumnCompanyName, types.ColumnError}, cols[n-3:])
	assert.Equal(t, tax.AllKeywords(), cols[:len(tax.AllKeywords())])
}

func TestRows(t *testing.T) {
	table := newTestTable()
	cols := Columns(table.Taxonomy)
	rows := Rows(table)
	require.Len(t, rows, 2)

	index := map[string]int{}
	for i, c := range cols {
		index[c] = i
	}

	ok := rows[0]
	require.Len(t, ok, len(cols))
	assert.Equal(t, true, ok[index["dairy"]])
	assert.Equal(t, true, ok[index["wholesaler"]])
	assert.Equal(t, false, ok[index["bakery"]])
	assert.Equal(t, true, ok[index[taxonomy.CategoryFoodBeverage]])
	assert.Equal(t, true, ok[index[taxonomy.CategoryDistribution]])
	assert.Equal(t, true, ok[index[types.ColumnRelevant]])
	assert.Equal(t, "acme.com", ok[index[types.ColumnCompanyName]])
	assert.Equal(t, "", ok[index[types.ColumnError]])

	failed := rows[1]
	assert.Equal(t, false, failed[index[types.ColumnRelevant]])
	assert.Equal(t, "broken.example", failed[index[types.ColumnCompanyName]])
	assert.Equal(t, "予期しないパニック: boom", failed[index[types.ColumnError]])
}

func TestWriteCSV(t *testing.T) {
	table := newTestTable()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Columns(table.Taxonomy), records[0])

	n := len(records[0])
	assert.Equal(t, []string{"TRUE", "acme.com", ""}, records[1][n-3:])
	assert.Equal(t, []string{"FALSE", "broken.example", "予期しないパニック: boom"}, records[2][n-3:])
}

func TestWrite_XLSX(t *testing.T) {
	table := newTestTable()
	path := filepath.Join(t.TempDir(), DefaultPath)

	require.NoError(t, Write(path, table))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	cols := Columns(table.Taxonomy)
	assert.Equal(t, cols, rows[0])

	n := len(cols)
	// 空の Error セルは末尾から省略されることがある
	require.GreaterOrEqual(t, len(rows[1]), n-1)
	assert.Equal(t, []string{"TRUE", "acme.com"}, rows[1][n-3:n-1])
	if len(rows[1]) == n {
		assert.Empty(t, rows[1][n-1])
	}
	require.Len(t, rows[2], n)
	assert.Equal(t, []string{"FALSE", "broken.example", "予期しないパニック: boom"}, rows[2][n-3:])
}

func TestWrite_CSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, Write(path, newTestTable()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Company Name")
}

func TestWrite_EmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, Write(path, &types.ResultTable{Taxonomy: taxonomy.Default()}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWrite_NilTable(t *testing.T) {
	assert.Error(t, Write(filepath.Join(t.TempDir(), "x.xlsx"), nil))
}
