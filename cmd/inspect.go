package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shouni/go-company-classifier/internal/pipeline"
	"github.com/shouni/go-company-classifier/pkg/types"
)

// inspect コマンドのフラグ
var (
	inspectDomain string
	showText      bool
)

// textPreviewLength はページ本文のプレビューの最大文字数です。
const textPreviewLength = 200

// printReport は1社分の分類結果を人が読める形式で出力します。
func printReport(w io.Writer, p *pipeline.Pipeline, rec *types.CompanyRecord) {
	fmt.Fprintf(w, "--- %s ---\n", rec.CompanyName)

	if len(rec.Pages) == 0 {
		fmt.Fprintln(w, "走査した about ページ: なし")
	} else {
		fmt.Fprintln(w, "走査した about ページ:")
		for _, page := range rec.Pages {
			fmt.Fprintf(w, "  %s\n", page)
		}
	}

	matched := p.MatchedByCategory(rec)
	for _, name := range p.Taxonomy().CategoryNames() {
		mark := "❌"
		if rec.Categories[name] {
			mark = "✅"
		}
		fmt.Fprintf(w, "%s %-14s %s\n", mark, name, strings.Join(matched[name], ", "))
	}
	fmt.Fprintf(w, "%s: %t\n", types.ColumnRelevant, rec.Relevant)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "1社分のドメインを処理し、検出したキーワードをカテゴリごとに表示します",
	Long:  `--domain で指定した1社について classify と同じ処理を行い、走査した about ページと検出したキーワードを表示します。`,
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(inspectDomain) == "" {
			return fmt.Errorf("--domain を指定してください")
		}

		// 1. 依存性の初期化
		client := GetGlobalClient()
		if client == nil {
			return fmt.Errorf("HTTPクライアントが初期化されていません。rootコマンドのPreRunを確認してください")
		}
		tax, err := loadTaxonomy()
		if err != nil {
			return err
		}
		p, err := pipeline.New(client, tax)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// 2. 1社分の処理
		rec, err := p.ClassifyDomain(ctx, inspectDomain)
		if err != nil {
			return err
		}

		// 3. 結果の出力
		printReport(os.Stdout, p, rec)

		if showText {
			for _, page := range rec.Pages {
				text, err := p.PageText(ctx, page)
				if err != nil {
					fmt.Printf("⚠️  %s: %v\n", page, err)
					continue
				}
				runes := []rune(text)
				if len(runes) > textPreviewLength {
					text = string(runes[:textPreviewLength]) + "..."
				}
				fmt.Printf("\n[%s]\n%s\n", page, text)
			}
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectDomain, "domain", "d", "", "処理対象のドメイン (例: example.com)")
	inspectCmd.Flags().BoolVar(&showText, "show-text", false, "走査した about ページの本文プレビューを表示する")
}
