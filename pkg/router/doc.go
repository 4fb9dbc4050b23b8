// Package router はクライアントの画面遷移（ナビゲーション）と遷移ガードを提供する。
//
// ルートは起動時に一度だけ定義される不変のリストで、各ルートは
// 認証が必要かどうかのメタデータを持つ。遷移のたびに登録されたガードが
// 同期的に評価され、遷移を許可するか別のパスへリダイレクトするかを決定する。
// リダイレクトで終わった遷移では、元のルートのコンポーネントは生成されない。
package router
