package cmd

import (
	"fmt"
	"log"
	"time"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/go-company-classifier/pkg/httpclient"
	"github.com/shouni/go-company-classifier/pkg/retry"
	"github.com/shouni/go-company-classifier/pkg/taxonomy"
)

// --- グローバル定数 ---

const (
	appName           = "company-classifier"
	defaultTimeoutSec = 10 // 秒
)

// --- グローバル変数とフラグ構造体 ---

// AppFlags はこのアプリケーション固有の永続フラグを保持
type AppFlags struct {
	TimeoutSec    int      // --timeout リクエストごとのタイムアウト
	MaxRetries    int      // --max-retries 初回に加えて行うリトライ回数
	RetryDelaySec int      // --retry-delay リトライ間の待機時間
	RatePerSec    float64  // --rate ホストごとの毎秒リクエスト数 (0 は無制限)
	TaxonomyPath  string   // --taxonomy タクソノミー定義 (YAML)
	Headers       []string // --header 追加・上書きするリクエストヘッダー ("Name: Value")
}

var Flags AppFlags // アプリケーション固有フラグにアクセスするためのグローバル変数
var globalClient *httpclient.Client

// --- 初期化とロジック (clibaseへのコールバックとして利用) ---

// addAppPersistentFlags は、アプリケーション固有の永続フラグをルートコマンドに追加します。
func addAppPersistentFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().IntVar(
		&Flags.TimeoutSec,
		"timeout",
		defaultTimeoutSec,
		"HTTPリクエストのタイムアウト時間（秒）",
	)
	rootCmd.PersistentFlags().IntVar(
		&Flags.MaxRetries,
		"max-retries",
		retry.DefaultMaxRetries,
		"HTTPリクエストのリトライ最大回数",
	)
	rootCmd.PersistentFlags().IntVar(
		&Flags.RetryDelaySec,
		"retry-delay",
		int(retry.DefaultDelay/time.Second),
		"リトライ間の待機時間（秒）",
	)
	rootCmd.PersistentFlags().Float64Var(
		&Flags.RatePerSec,
		"rate",
		0,
		"ホストごとの毎秒リクエスト数の上限（0 は無制限）",
	)
	rootCmd.PersistentFlags().StringVar(
		&Flags.TaxonomyPath,
		"taxonomy",
		"",
		"タクソノミー定義ファイル (YAML)。省略時は組み込みの定義を使用",
	)
	rootCmd.PersistentFlags().StringArrayVar(
		&Flags.Headers,
		"header",
		nil,
		"追加・上書きするリクエストヘッダー (例: --header \"User-Agent: my-bot/1.0\")。複数指定可",
	)
}

// initAppPreRunE は、clibase共通処理の後に実行される、アプリケーション固有のPersistentPreRunEです。
// NOTE: clibaseの PersistentPreRunE チェーンにより、clibase.Flags.Verbose はこの関数実行前に設定済み
func initAppPreRunE(cmd *cobra.Command, args []string) error {
	if Flags.TimeoutSec < 0 || Flags.MaxRetries < 0 || Flags.RetryDelaySec < 0 || Flags.RatePerSec < 0 {
		return fmt.Errorf("--timeout, --max-retries, --retry-delay, --rate には0以上の値を指定してください")
	}

	headers, err := httpclient.ParseHeaders(Flags.Headers)
	if err != nil {
		return err
	}

	timeout := time.Duration(Flags.TimeoutSec) * time.Second
	delay := time.Duration(Flags.RetryDelaySec) * time.Second

	if clibase.Flags.Verbose {
		log.Printf("HTTPクライアントのタイムアウトを設定しました (Timeout: %s)。", timeout)
		log.Printf("HTTPクライアントのリトライを設定しました (MaxRetries: %d, Delay: %s)。", Flags.MaxRetries, delay)
		if Flags.RatePerSec > 0 {
			log.Printf("ホストごとのリクエスト数を制限します (%.2f req/s)。", Flags.RatePerSec)
		}
	}

	// 共有クライアントの初期化 (全リクエストで1つのセッションを使う)
	globalClient = httpclient.New(
		timeout,
		httpclient.WithMaxRetries(uint64(Flags.MaxRetries)),
		httpclient.WithRetryDelay(delay),
		httpclient.WithRateLimit(Flags.RatePerSec),
		httpclient.WithHeaders(headers),
	)

	return nil
}

// GetGlobalClient は、初期化された共有クライアントを返す関数 (DIの代わり)
func GetGlobalClient() *httpclient.Client {
	return globalClient
}

// loadTaxonomy は --taxonomy が指定されていればそのファイルを、なければ組み込みの定義を返します。
func loadTaxonomy() (*taxonomy.Taxonomy, error) {
	if Flags.TaxonomyPath == "" {
		return taxonomy.Default(), nil
	}
	tax, err := taxonomy.Load(Flags.TaxonomyPath)
	if err != nil {
		return nil, fmt.Errorf("タクソノミーの読み込みエラー: %w", err)
	}
	if clibase.Flags.Verbose {
		log.Printf("タクソノミーを読み込みました: %s (%d カテゴリ, %d キーワード)",
			Flags.TaxonomyPath, len(tax.Categories()), len(tax.AllKeywords()))
	}
	return tax, nil
}

// --- エントリポイント ---

// Execute は、ルートコマンドを実行するメイン関数です。clibaseのExecuteを使用する。
func Execute() {
	clibase.Execute(
		appName,
		addAppPersistentFlags,
		initAppPreRunE,
		classifyCmd,
		inspectCmd,
		taxonomyCmd,
	)
	// clibase.Execute() の中で os.Exit(1) が処理されるため、ここでは不要
}
