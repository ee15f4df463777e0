package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/shouni/go-company-classifier/pkg/taxonomy"
	"github.com/shouni/go-company-classifier/pkg/types"
)

const (
	// DefaultPath は出力ファイルの既定のパスです。
	DefaultPath = "company_fnb_classification.xlsx"
	// SheetName は XLSX 出力のシート名です。
	SheetName = "Companies"
)

// Columns は出力テーブルの列名を返します。
// 全キーワード (ソート済み)、カテゴリ名 (タクソノミー順)、Relevant、Company Name、Error の順です。
func Columns(tax *taxonomy.Taxonomy) []string {
	keywords := tax.AllKeywords()
	categories := tax.CategoryNames()

	cols := make([]string, 0, len(keywords)+len(categories)+3)
	cols = append(cols, keywords...)
	cols = append(cols, categories...)
	cols = append(cols, types.ColumnRelevant, types.ColumnCompanyName, types.ColumnError)
	return cols
}

// Rows は結果テーブルを Columns と同じ列順のセル値に変換します。
// フラグは bool、会社名とエラー内容は文字列です。正常な行の Error 列は空文字です。
func Rows(table *types.ResultTable) [][]interface{} {
	keywords := table.Taxonomy.AllKeywords()
	categories := table.Taxonomy.CategoryNames()

	rows := make([][]interface{}, 0, len(table.Records))
	for _, rec := range table.Records {
		row := make([]interface{}, 0, len(keywords)+len(categories)+3)
		for _, kw := range keywords {
			row = append(row, rec.Keywords[kw])
		}
		for _, name := range categories {
			row = append(row, rec.Categories[name])
		}

		errText := ""
		if rec.Failed() {
			errText = rec.Err.Error()
		}
		row = append(row, rec.Relevant, rec.CompanyName, errText)
		rows = append(rows, row)
	}
	return rows
}

// Write は結果テーブルをファイルに書き出します。
// 拡張子が .csv ならCSV、それ以外は XLSX として書き出します。
func Write(path string, table *types.ResultTable) error {
	if table == nil || table.Taxonomy == nil {
		return fmt.Errorf("export.Write: 結果テーブルが初期化されていません")
	}

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		err = writeCSVFile(path, table)
	default:
		err = writeXLSX(path, table)
	}
	if err != nil {
		return err
	}

	log.Printf("データを保存しました: %s (%d 件)", path, len(table.Records))
	return nil
}

func writeCSVFile(path string, table *types.ResultTable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("出力ファイルを作成できません (%s): %w", path, err)
	}
	if err := WriteCSV(f, table); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("出力ファイルのクローズに失敗しました (%s): %w", path, err)
	}
	return nil
}

// WriteCSV は結果テーブルをCSVとして書き出します。bool は TRUE / FALSE で表します。
func WriteCSV(w io.Writer, table *types.ResultTable) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns(table.Taxonomy)); err != nil {
		return fmt.Errorf("CSVヘッダーの書き込みエラー: %w", err)
	}
	for i, row := range Rows(table) {
		record := make([]string, len(row))
		for j, v := range row {
			record[j] = formatCell(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("CSVの書き込みエラー (行: %d): %w", i+2, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("CSVの書き込みエラー: %w", err)
	}
	return nil
}

func formatCell(v interface{}) string {
	switch x := v.(type) {
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// writeXLSX は結果テーブルを XLSX として書き出します。
// ヘッダー行は太字にし、ウィンドウ枠を固定します。
func writeXLSX(path string, table *types.ResultTable) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("XLSXファイルのクローズに失敗しました: %v", err)
		}
	}()

	// 1. シートの準備
	if err := f.SetSheetName(f.GetSheetList()[0], SheetName); err != nil {
		return fmt.Errorf("シート名の設定エラー: %w", err)
	}

	// 2. ヘッダー行
	header := Columns(table.Taxonomy)
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &headerRow); err != nil {
		return fmt.Errorf("ヘッダー行の書き込みエラー: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("スタイルの作成エラー: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, style); err != nil {
		return fmt.Errorf("ヘッダー行のスタイル設定エラー: %w", err)
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("ウィンドウ枠の固定エラー: %w", err)
	}

	// 3. データ行
	for i, row := range Rows(table) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("セル座標の計算エラー (行: %d): %w", i+2, err)
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("データ行の書き込みエラー (行: %d): %w", i+2, err)
		}
	}

	// 4. 保存
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("XLSXファイルの保存エラー (%s): %w", path, err)
	}
	return nil
}
