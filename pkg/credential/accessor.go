package credential

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/nao1215/bookmanager/pkg/localstorage"
)

// StorageKey はクレデンシャルを保存するストアのキー。
// ログイン処理もこのキーに書き込む必要がある。
const StorageKey = "token"

// ErrEmptyCredential は空のクレデンシャルを保存しようとした場合に返される。
var ErrEmptyCredential = errors.New("空のクレデンシャルは保存できません")

// Accessor は永続ストア上のクレデンシャルを読み書きする。
// 値をキャッシュせず、呼び出しのたびにストアから読み直す。
type Accessor struct {
	// storage はクレデンシャルを保持する永続ストア。
	storage localstorage.Storage
}

// NewAccessor は新しいAccessorを生成する。
func NewAccessor(storage localstorage.Storage) *Accessor {
	return &Accessor{storage: storage}
}

// Read は保存されているクレデンシャルを返す。存在しない場合はokがfalseになる。
// 失敗しない。ストアのエラーはログに記録し、クレデンシャルなしとして扱う。
func (a *Accessor) Read(ctx context.Context) (string, bool) {
	token, ok, err := a.storage.GetItem(ctx, StorageKey)
	if err != nil {
		log.Printf("クレデンシャルの読み込みに失敗: %v", err)
		return "", false
	}
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// IsLoggedIn はクレデンシャルが存在するかどうかを返す。
func (a *Accessor) IsLoggedIn(ctx context.Context) bool {
	_, ok := a.Read(ctx)
	return ok
}

// Write はクレデンシャルを保存する。ログイン成功時に呼び出す。
func (a *Accessor) Write(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyCredential
	}
	if err := a.storage.SetItem(ctx, StorageKey, token); err != nil {
		return fmt.Errorf("クレデンシャルの保存に失敗: %w", err)
	}
	return nil
}

// Clear はクレデンシャルを削除する。冪等で、失敗しない。
// ストアのエラーはログに記録する。
func (a *Accessor) Clear(ctx context.Context) {
	if err := a.storage.RemoveItem(ctx, StorageKey); err != nil {
		log.Printf("クレデンシャルの削除に失敗: %v", err)
	}
}
