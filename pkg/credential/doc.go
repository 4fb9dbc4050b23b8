// Package credential は認証トークン（クレデンシャル）の読み書きを提供する。
//
// クレデンシャルは不透明な文字列で、永続ストアの固定キー "token" に保存される。
// 空でない文字列が保存されていることが「ログイン済み」の唯一の判定基準であり、
// 有効期限や署名の検証はクライアント側では行わない（検証はバックエンドの責務）。
package credential
