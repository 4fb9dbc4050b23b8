// Package bookapi は書籍管理APIサーバーを提供する。
//
// 書籍のCRUD（一覧はskip/limitによるページング）と、ユーザー登録・ログインによる
// JWTアクセストークンの発行を担当する。書籍の作成・更新・削除には
// Authorization: Bearer ヘッダーによる認証が必要。
//
// エラーレスポンスは全て {"detail": "..."} 形式で返す。
// データはSQLiteに保存し、起動時にmigrationsディレクトリのマイグレーションを適用する。
package bookapi
