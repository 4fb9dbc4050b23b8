package httpclient

import (
	"errors"
	"fmt"
)

// HTTPError は2xx以外のレスポンスを表す。
// ステータスコードやボディの解釈は呼び出し元が行う。
type HTTPError struct {
	// Method はリクエストのHTTPメソッド。
	Method string
	// URL はリクエスト先のURL。
	URL string
	// StatusCode はレスポンスのステータスコード。
	StatusCode int
	// Body はレスポンスボディ。
	Body []byte
}

// Error はエラーメッセージを返す。
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTPエラー: %s %s: status=%d, body=%s", e.Method, e.URL, e.StatusCode, string(e.Body))
}

// StatusCode はerrがHTTPErrorを含む場合にそのステータスコードを返す。
func StatusCode(err error) (int, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode, true
	}
	return 0, false
}
