package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shouni/go-company-classifier/pkg/taxonomy"
)

// printTaxonomy はカテゴリごとのキーワードと Relevant カテゴリを出力します。
func printTaxonomy(w io.Writer, tax *taxonomy.Taxonomy) {
	for _, cat := range tax.Categories() {
		fmt.Fprintf(w, "%s (%d)\n", cat.Name, len(cat.Keywords))
		fmt.Fprintf(w, "  %s\n", strings.Join(cat.Keywords, ", "))
	}
	fmt.Fprintf(w, "Relevant: %s\n", strings.Join(tax.RelevantCategories(), " / "))
	fmt.Fprintf(w, "キーワード総数: %d\n", len(tax.AllKeywords()))
}

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "使用するタクソノミー (カテゴリとキーワード) を表示します",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tax, err := loadTaxonomy()
		if err != nil {
			return err
		}
		printTaxonomy(os.Stdout, tax)
		return nil
	},
}
