package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shouni/go-company-classifier/internal/pipeline"
	"github.com/shouni/go-company-classifier/pkg/export"
	"github.com/shouni/go-company-classifier/pkg/input"
)

// classify コマンドのフラグ
var (
	inputPath  string
	outputPath string
	skipRows   int
	sheetName  string
)

// runClassify は、入力ファイルの全社を分類して結果をファイルに書き出すメインロジックです。
func runClassify(ctx context.Context, p *pipeline.Pipeline) error {
	// 1. 全社の処理 (入力の不備はネットワークアクセス前にエラー)
	table, err := p.ClassifyFile(ctx, inputPath, input.Options{SkipRows: skipRows, Sheet: sheetName})
	if err != nil {
		return err
	}

	// 2. 結果の書き出し
	if err := export.Write(outputPath, table); err != nil {
		return fmt.Errorf("結果の書き出しエラー: %w", err)
	}

	ok, failed, relevant := table.Counts()
	fmt.Printf("Data saved to %s (成功 %d 件, 失敗 %d 件, Relevant %d 件)\n", outputPath, ok, failed, relevant)
	return nil
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "会社リストの各社の about ページを走査し、キーワード分類結果をスプレッドシートに出力します",
	Long: `入力ファイル (CSV または XLSX) の3列目をラベル、4列目をドメインとして読み込み、
各社のホームページから about ページを探して業種キーワードを検出します。
結果はキーワード・カテゴリごとの真偽値と Relevant、Company Name を列に持つ表として書き出されます。
末尾の Error 列には、ドメインが空の行など処理できなかった会社のエラー内容が入ります (正常な行は空欄)。`,
	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
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

		// 2. 割り込みシグナルでキャンセルされるコンテキスト
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.Printf("分類開始 (入力: %s, 出力: %s, 読み飛ばし: %d 行)", inputPath, outputPath, skipRows)

		// 3. メインロジックの実行
		return runClassify(ctx, p)
	},
}

func init() {
	classifyCmd.Flags().StringVarP(&inputPath, "input", "i", input.DefaultPath, "会社リストのファイル (.csv / .xlsx)")
	classifyCmd.Flags().StringVarP(&outputPath, "output", "o", export.DefaultPath, "出力ファイル (.xlsx / .csv)")
	classifyCmd.Flags().IntVar(&skipRows, "skip-rows", input.DefaultSkipRows, "ヘッダー行の後に読み飛ばすデータ行の数")
	classifyCmd.Flags().StringVar(&sheetName, "sheet", "", "XLSX 入力のシート名 (省略時は先頭のシート)")
}
