// Package middleware は書籍管理APIで使用するGinミドルウェアを提供する。
//
// JWT認証トークンの発行と検証、パニックリカバリ、CORS設定、
// リクエストIDの付与を含む。エラーレスポンスは {"detail": "..."} 形式で返す。
package middleware
