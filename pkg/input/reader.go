package input

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/shouni/go-company-classifier/pkg/types"
)

const (
	// DefaultSkipRows はヘッダー行の後に読み飛ばすデータ行の数です。
	DefaultSkipRows = 4
	// DefaultPath は入力ファイルの既定のパスです。
	DefaultPath = "Rename.csv"

	// 必要な列数と、使用する列の位置 (0始まり)
	requiredColumns = 4
	labelColumn     = 2
	domainColumn    = 3
)

var (
	// ErrMalformedRow は列数が足りない行を示します。
	ErrMalformedRow = errors.New("列数が不足している行があります")
	// ErrUnsupportedFormat は対応していない拡張子を示します。
	ErrUnsupportedFormat = errors.New("対応していない入力形式です")
)

// Options は入力ファイルの読み込み設定です。
type Options struct {
	SkipRows int    // ヘッダー行の後に読み飛ばすデータ行の数
	Sheet    string // XLSX のシート名 (空の場合は先頭のシート)
}

// DefaultOptions は既定の読み込み設定を返します。
func DefaultOptions() Options {
	return Options{SkipRows: DefaultSkipRows}
}

// Read は会社リストを読み込みます。拡張子が .xlsx なら XLSX、それ以外は CSV として扱います。
func Read(path string, opts Options) ([]types.CompanyInput, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readXLSX(path, opts)
	case ".csv", ".txt", "":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("入力ファイルを開けません (%s): %w", path, err)
		}
		defer f.Close()
		return ReadCSV(f, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ReadCSV はCSV形式の会社リストを読み込みます。
func ReadCSV(r io.Reader, opts Options) ([]types.CompanyInput, error) {
	cr := csv.NewReader(r)
	// 列数の検証は自前で行い、行番号付きのエラーを返す
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("CSVの読み込みエラー: %w", err)
	}
	return parseRows(rows, opts, false)
}

// readXLSX はXLSX形式の会社リストを読み込みます。
func readXLSX(path string, opts Options) ([]types.CompanyInput, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("入力ファイルを開けません (%s): %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Printf("入力ファイルのクローズに失敗しました (%s): %v", path, cerr)
		}
	}()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("シートがありません: %s", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("シート %q の読み込みエラー: %w", sheet, err)
	}
	// XLSX は末尾の空セルが省略されるため、ヘッダーの列数に合わせて補う
	return parseRows(rows, opts, true)
}

// parseRows はヘッダー行と読み飛ばし行を除いた各行から会社の入力を組み立てます。
// 行番号はヘッダー行を1とする1始まりの番号です (空行は数えません)。
func parseRows(rows [][]string, opts Options, padToHeader bool) ([]types.CompanyInput, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	// 1. ヘッダー行の検証
	header := rows[0]
	if len(header) < requiredColumns {
		return nil, fmt.Errorf("%w (行: 1, 列数: %d)", ErrMalformedRow, len(header))
	}

	skip := opts.SkipRows
	if skip < 0 {
		skip = 0
	}

	// 2. データ行の読み取り
	var inputs []types.CompanyInput
	for i := 1 + skip; i < len(rows); i++ {
		row := rows[i]
		lineNo := i + 1

		if padToHeader && len(row) < len(header) {
			row = append(row, make([]string, len(header)-len(row))...)
		}
		if len(row) < requiredColumns {
			return nil, fmt.Errorf("%w (行: %d, 列数: %d)", ErrMalformedRow, lineNo, len(row))
		}

		// 空のドメインも1社として渡し、出力では失敗行として残す
		domain := strings.TrimSpace(row[domainColumn])
		if domain == "" {
			log.Printf("ドメインが空の行があります (行: %d)", lineNo)
		}

		inputs = append(inputs, types.CompanyInput{
			Row:    lineNo,
			Label:  strings.TrimSpace(row[labelColumn]),
			Domain: domain,
		})
	}
	return inputs, nil
}
