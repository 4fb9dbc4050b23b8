// Package localstorage はクライアントが使用する永続キーバリューストアを提供する。
//
// ブラウザのlocalStorageに相当する単純な文字列キー/文字列値のストアで、
// 認証トークンなどクライアント側の状態をプロセスをまたいで保持する。
// SQLiteファイルに保存する実装と、テスト用のインメモリ実装を持つ。
package localstorage
