package localstorage

import (
	"context"
	"errors"
)

// ErrClosed はクローズ済みのストアを操作した場合に返される。
var ErrClosed = errors.New("ストアはクローズ済みです")

// Storage は文字列キーと文字列値を永続化するストアのインターフェース。
type Storage interface {
	// GetItem はキーに対応する値を返す。キーが存在しない場合はokがfalseになる。
	// キーが存在しないことはエラーではない。
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	// SetItem はキーに値を保存する。既存の値は上書きされる。
	SetItem(ctx context.Context, key, value string) error
	// RemoveItem はキーを削除する。存在しないキーの削除は何もしない。
	RemoveItem(ctx context.Context, key string) error
}
