package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-company-classifier/pkg/company"
	"github.com/shouni/go-company-classifier/pkg/input"
	"github.com/shouni/go-company-classifier/pkg/taxonomy"
)

// stubFetcher は URL ごとに固定のHTMLを返します。登録のないURLは取得失敗になります。
type stubFetcher map[string]string

func (s stubFetcher) FetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	body, ok := s[url]
	if !ok {
		return nil, errors.New("unreachable")
	}
	return goquery.NewDocumentFromReader(strings.NewReader(body))
}

var testSite = stubFetcher{
	"https://acme.com?":      `<a href="/about">About us</a>`,
	"https://acme.com/about": `<p>Acme is a contract manufacturer of probiotic supplements.</p>`,
	"https://beta.com?":      `<p>No links here</p>`,
}

func TestNew(t *testing.T) {
	_, err := New(nil, taxonomy.Default())
	assert.Error(t, err)
	_, err = New(testSite, nil)
	assert.Error(t, err)
}

func TestClassifyDomain(t *testing.T) {
	p, err := New(testSite, taxonomy.Default())
	require.NoError(t, err)

	rec, err := p.ClassifyDomain(context.Background(), "acme.com")
	require.NoError(t, err)
	assert.Equal(t, "acme.com", rec.CompanyName)
	assert.True(t, rec.Relevant)
	assert.Equal(t, []string{"https://acme.com/about"}, rec.Pages)

	matched := p.MatchedByCategory(rec)
	assert.Equal(t, []string{"manufacturer"}, matched[taxonomy.CategoryManufacturing])
	assert.Equal(t, []string{"supplements"}, matched[taxonomy.CategoryProbiotics])
	assert.Empty(t, matched[taxonomy.CategoryBrand])

	text, err := p.PageText(context.Background(), rec.Pages[0])
	require.NoError(t, err)
	assert.Contains(t, text, "probiotic supplements")

	_, err = p.ClassifyDomain(context.Background(), " ")
	assert.Error(t, err)
}

func TestClassifyFile(t *testing.T) {
	p, err := New(testSite, taxonomy.Default())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "Rename.csv")
	data := "a,b,name,domain\n1,x,Acme,acme.com\n2,x,Beta,beta.com\n3,x,Gone,gone.com\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	table, err := p.ClassifyFile(context.Background(), path, input.Options{})
	require.NoError(t, err)
	require.Len(t, table.Records, 3)

	assert.True(t, table.Records[0].Relevant)
	assert.False(t, table.Records[1].Relevant)
	assert.Equal(t, "gone.com", table.Records[2].CompanyName)
	assert.False(t, table.Records[2].Failed())
}

func TestClassifyFile_BlankDomainKeepsRow(t *testing.T) {
	p, err := New(testSite, taxonomy.Default())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "Rename.csv")
	data := "a,b,name,domain\n1,x,Acme,acme.com\n2,x,Blank, \n3,x,Beta,beta.com\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	table, err := p.ClassifyFile(context.Background(), path, input.Options{})
	require.NoError(t, err)
	require.Len(t, table.Records, 3)

	blank := table.Records[1]
	assert.True(t, blank.Failed())
	assert.ErrorIs(t, blank.Err, company.ErrEmptyDomain)
	assert.Equal(t, "Blank", blank.Label)
	assert.False(t, blank.Relevant)

	assert.Equal(t, "acme.com", table.Records[0].CompanyName)
	assert.Equal(t, "beta.com", table.Records[2].CompanyName)

	ok, failed, _ := table.Counts()
	assert.Equal(t, 2, ok)
	assert.Equal(t, 1, failed)
}

func TestClassifyFile_MalformedInput(t *testing.T) {
	p, err := New(testSite, taxonomy.Default())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,c,d\n1,2\n"), 0o644))

	_, err = p.ClassifyFile(context.Background(), path, input.Options{})
	assert.ErrorIs(t, err, input.ErrMalformedRow)
}
