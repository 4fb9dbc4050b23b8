// Package httpclient はJSON APIを呼び出すHTTPクライアントを提供する。
//
// 接続先のベースURLを生成時に固定し、送信前の全リクエストに
// インターセプタを適用する。レスポンスのエラーは変換せず、
// ステータスコードとボディを保持したHTTPErrorとして呼び出し元に返す。
package httpclient
