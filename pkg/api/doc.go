// Package api は書籍管理バックエンドのREST APIを呼び出すクライアントを提供する。
//
// 全てのリクエストは固定のベースURLへ送信され、送信直前にクレデンシャルストアから
// トークンを読み直して Authorization: Bearer ヘッダーを付与する。
// トークンが存在しない場合はヘッダーを付けずに送信し、拒否するかどうかはバックエンドに任せる。
// 通信エラーやHTTPエラーは変換せず、そのまま呼び出し元に返す。
package api
