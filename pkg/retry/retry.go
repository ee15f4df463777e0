package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// リトライ関連の定数
	DefaultMaxRetries = 2 // 初回を含めて合計3回試行する

	// 試行間の固定待機時間
	DefaultDelay = 2 * time.Second
)

// Operation はリトライ可能な処理を表す関数です。成功時は nil を返します。
type Operation func() error

// ShouldRetryFunc はエラーを受け取り、そのエラーがリトライ可能かどうかを判定する関数です。
type ShouldRetryFunc func(error) bool

// NotifyFunc は試行が失敗し、次の試行を待機する直前に呼び出されます。
// attempt は失敗した試行の番号 (1始まり) です。
type NotifyFunc func(err error, attempt uint64, wait time.Duration)

// Config はリトライ動作を設定するための構造体です。
type Config struct {
	MaxRetries uint64
	Delay      time.Duration
}

// DefaultConfig は推奨されるデフォルト設定を返します。
func DefaultConfig() Config {
	return Config{
		MaxRetries: DefaultMaxRetries,
		Delay:      DefaultDelay,
	}
}

// Attempts は初回を含めた最大試行回数を返します。
func (c Config) Attempts() uint64 {
	return c.MaxRetries + 1
}

// newBackOffPolicy は固定間隔・最大リトライ回数・コンテキストを組み合わせたポリシーを生成します。
func newBackOffPolicy(ctx context.Context, cfg Config) backoff.BackOff {
	b := backoff.NewConstantBackOff(cfg.Delay)
	bo := backoff.WithMaxRetries(b, cfg.MaxRetries)
	return backoff.WithContext(bo, ctx)
}

// Do は固定間隔とカスタムエラー判定を使用して操作をリトライします。
// notifyFn が nil でなければ、待機に入る前の各失敗について呼び出されます。
func Do(ctx context.Context, cfg Config, operationName string, op Operation, shouldRetryFn ShouldRetryFunc, notifyFn NotifyFunc) error {
	bo := newBackOffPolicy(ctx, cfg)

	var lastErr error
	var attempt uint64
	permanent := false

	// リトライ処理内で実行される実際の操作
	retryableOp := func() error {
		attempt++
		err := op()

		if err == nil {
			return nil // 成功
		}

		lastErr = err
		if shouldRetryFn == nil || shouldRetryFn(err) {
			return err // リトライ対象
		}

		permanent = true
		return backoff.Permanent(err)
	}

	notify := func(err error, wait time.Duration) {
		if notifyFn != nil {
			notifyFn(err, attempt, wait)
		}
	}

	err := backoff.RetryNotify(retryableOp, bo, notify)
	if err == nil {
		return nil
	}

	// コンテキストキャンセル/タイムアウトのエラー処理
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		if ctx.Err() != nil {
			return fmt.Errorf("%sに失敗しました: コンテキストタイムアウト/キャンセル: %w", operationName, err)
		}
	}

	// backoff.Retry は Permanent でラップしたエラーを展開済みで返す
	if permanent {
		return fmt.Errorf("%sに失敗しました: 致命的なエラーのためリトライを中止: %w", operationName, lastErr)
	}

	// その他のリトライ上限到達エラー
	return fmt.Errorf("%sに失敗しました: 最大試行回数 (%d回) に到達。最終エラー: %w", operationName, attempt, lastErr)
}
