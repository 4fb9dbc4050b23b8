package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// testRequest はテストサーバーが受け取ったリクエスト情報を保持する構造体。
type testRequest struct {
	// Method はHTTPメソッド。
	Method string
	// Path はリクエストパス。
	Path string
	// RawQuery はクエリ文字列。
	RawQuery string
	// Body はリクエストボディ。
	Body []byte
	// Headers はリクエストヘッダー。
	Headers http.Header
}

// testPayload はテスト用のリクエスト/レスポンスペイロード。
type testPayload struct {
	// Name はテスト用の名前フィールド。
	Name string `json:"name"`
	// Value はテスト用の値フィールド。
	Value int `json:"value"`
}

// newRecordingServer はリクエストを記録してresponseを返すテストサーバーを生成する。
func newRecordingServer(t *testing.T, status int, response any) (*httptest.Server, *testRequest) {
	t.Helper()

	received := &testRequest{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Method = r.Method
		received.Path = r.URL.Path
		received.RawQuery = r.URL.RawQuery
		received.Body, _ = io.ReadAll(r.Body)
		received.Headers = r.Header.Clone()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(response)
	}))
	t.Cleanup(ts.Close)
	return ts, received
}

// TestNew はNew関数でクライアントが正しく生成されることを検証する。
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("クライアントが正常に生成されること", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:8000")
		if client.BaseURL() != "http://localhost:8000" {
			t.Errorf("BaseURL() = %q, want %q", client.BaseURL(), "http://localhost:8000")
		}
		if client.httpClient == nil {
			t.Fatal("httpClientがnil")
		}
	})

	t.Run("末尾のスラッシュが取り除かれること", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:8000/")
		if client.BaseURL() != "http://localhost:8000" {
			t.Errorf("BaseURL() = %q, want %q", client.BaseURL(), "http://localhost:8000")
		}
	})

	t.Run("デフォルトではタイムアウトが設定されていないこと", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:8000")
		if client.httpClient.Timeout != 0 {
			t.Errorf("Timeout = %v, want 0", client.httpClient.Timeout)
		}
	})

	t.Run("WithHTTPClientで内部クライアントを差し替えられること", func(t *testing.T) {
		t.Parallel()

		hc := &http.Client{Timeout: 5 * time.Second}
		client := New("http://localhost:8000", WithHTTPClient(hc))
		if client.httpClient != hc {
			t.Error("httpClientが差し替えられていない")
		}
	})
}

// TestPostJSON はPostJSON関数を検証する。
func TestPostJSON(t *testing.T) {
	t.Parallel()

	t.Run("正常にPOSTリクエストを送信してレスポンスを取得できること", func(t *testing.T) {
		t.Parallel()

		ts, received := newRecordingServer(t, http.StatusOK, testPayload{Name: "response", Value: 200})

		var result testPayload
		err := New(ts.URL).PostJSON(context.Background(), "/books", testPayload{Name: "request", Value: 100}, &result)
		if err != nil {
			t.Fatalf("PostJSON()でエラーが発生: %v", err)
		}

		if received.Method != http.MethodPost {
			t.Errorf("Method = %q, want %q", received.Method, http.MethodPost)
		}
		if received.Path != "/books" {
			t.Errorf("Path = %q, want %q", received.Path, "/books")
		}

		var sent testPayload
		if err := json.Unmarshal(received.Body, &sent); err != nil {
			t.Fatalf("リクエストボディのパースに失敗: %v", err)
		}
		if sent.Name != "request" || sent.Value != 100 {
			t.Errorf("sent = %+v, want {request 100}", sent)
		}
		if got := received.Headers.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want %q", got, "application/json")
		}
		if result.Name != "response" || result.Value != 200 {
			t.Errorf("result = %+v, want {response 200}", result)
		}
	})

	t.Run("resultがnilの場合でもエラーにならないこと", func(t *testing.T) {
		t.Parallel()

		ts, _ := newRecordingServer(t, http.StatusCreated, map[string]string{"status": "created"})
		if err := New(ts.URL).PostJSON(context.Background(), "/books", testPayload{}, nil); err != nil {
			t.Fatalf("PostJSON()でエラーが発生: %v", err)
		}
	})

	t.Run("キャンセルされたコンテキストでエラーが返ること", func(t *testing.T) {
		t.Parallel()

		ts, _ := newRecordingServer(t, http.StatusOK, testPayload{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel() // 即座にキャンセル

		err := New(ts.URL).PostJSON(ctx, "/books", testPayload{}, nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})

	t.Run("シリアライズできないボディでエラーが返ること", func(t *testing.T) {
		t.Parallel()

		ts, _ := newRecordingServer(t, http.StatusOK, testPayload{})
		// json.Marshalでエラーになるチャネル型を渡す
		if err := New(ts.URL).PostJSON(context.Background(), "/books", make(chan int), nil); err == nil {
			t.Fatal("PostJSON()がエラーを返すべきだが、nilが返った")
		}
	})
}

// TestGetJSON はGetJSON関数を検証する。
func TestGetJSON(t *testing.T) {
	t.Parallel()

	t.Run("パスとクエリがそのまま送信されること", func(t *testing.T) {
		t.Parallel()

		ts, received := newRecordingServer(t, http.StatusOK, testPayload{Name: "get", Value: 42})

		var result testPayload
		if err := New(ts.URL).GetJSON(context.Background(), "/books?skip=0&limit=5", &result); err != nil {
			t.Fatalf("GetJSON()でエラーが発生: %v", err)
		}
		if received.Method != http.MethodGet {
			t.Errorf("Method = %q, want %q", received.Method, http.MethodGet)
		}
		if received.Path != "/books" || received.RawQuery != "skip=0&limit=5" {
			t.Errorf("request = %s?%s, want /books?skip=0&limit=5", received.Path, received.RawQuery)
		}
		if result.Value != 42 {
			t.Errorf("result.Value = %d, want 42", result.Value)
		}
	})

	t.Run("GETリクエストにボディとContent-Typeが含まれないこと", func(t *testing.T) {
		t.Parallel()

		ts, received := newRecordingServer(t, http.StatusOK, testPayload{})
		if err := New(ts.URL).GetJSON(context.Background(), "/me", nil); err != nil {
			t.Fatalf("GetJSON()でエラーが発生: %v", err)
		}
		if len(received.Body) != 0 {
			t.Errorf("GETリクエストにボディが含まれている: %q", string(received.Body))
		}
		if got := received.Headers.Get("Content-Type"); got != "" {
			t.Errorf("Content-Type = %q, want empty", got)
		}
	})

	t.Run("不正なJSONレスポンスでエラーが返ること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{invalid json}`))
		}))
		defer ts.Close()

		var result testPayload
		if err := New(ts.URL).GetJSON(context.Background(), "/books", &result); err == nil {
			t.Fatal("GetJSON()がエラーを返すべきだが、nilが返った")
		}
	})

	t.Run("接続できないサーバーに対してエラーが返ること", func(t *testing.T) {
		t.Parallel()

		// 存在しないサーバーに接続を試みる
		err := New("http://127.0.0.1:1").GetJSON(context.Background(), "/books", nil)
		if err == nil {
			t.Fatal("GetJSON()がエラーを返すべきだが、nilが返った")
		}
		if _, ok := StatusCode(err); ok {
			t.Error("通信エラーがHTTPErrorとして返された")
		}
	})
}

// TestPutAndDeleteJSON はPutJSONとDeleteJSONを検証する。
func TestPutAndDeleteJSON(t *testing.T) {
	t.Parallel()

	t.Run("PUTリクエストが送信されること", func(t *testing.T) {
		t.Parallel()

		ts, received := newRecordingServer(t, http.StatusOK, testPayload{})
		if err := New(ts.URL).PutJSON(context.Background(), "/books/3", testPayload{Name: "u"}, nil); err != nil {
			t.Fatalf("PutJSON()でエラーが発生: %v", err)
		}
		if received.Method != http.MethodPut || received.Path != "/books/3" {
			t.Errorf("request = %s %s, want PUT /books/3", received.Method, received.Path)
		}
	})

	t.Run("DELETEリクエストが送信されること", func(t *testing.T) {
		t.Parallel()

		ts, received := newRecordingServer(t, http.StatusOK, map[string]string{"message": "Book deleted"})
		var result map[string]string
		if err := New(ts.URL).DeleteJSON(context.Background(), "/books/3", &result); err != nil {
			t.Fatalf("DeleteJSON()でエラーが発生: %v", err)
		}
		if received.Method != http.MethodDelete || received.Path != "/books/3" {
			t.Errorf("request = %s %s, want DELETE /books/3", received.Method, received.Path)
		}
		if result["message"] != "Book deleted" {
			t.Errorf("message = %q, want %q", result["message"], "Book deleted")
		}
	})
}

// TestHTTPError は2xx以外のレスポンスの扱いを検証する。
func TestHTTPError(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			t.Parallel()

			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(status)
				w.Write([]byte(`{"detail":"failed"}`))
			}))
			defer ts.Close()

			err := New(ts.URL).GetJSON(context.Background(), "/books/1", nil)
			var httpErr *HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("err = %v, want *HTTPError", err)
			}
			if httpErr.StatusCode != status {
				t.Errorf("StatusCode = %d, want %d", httpErr.StatusCode, status)
			}
			if string(httpErr.Body) != `{"detail":"failed"}` {
				t.Errorf("Body = %q, want %q", string(httpErr.Body), `{"detail":"failed"}`)
			}
			if code, ok := StatusCode(err); !ok || code != status {
				t.Errorf("StatusCode() = (%d, %v), want (%d, true)", code, ok, status)
			}
		})
	}
}

// TestWithInterceptor はリクエストインターセプタを検証する。
func TestWithInterceptor(t *testing.T) {
	t.Parallel()

	t.Run("インターセプタが登録順に全リクエストへ適用されること", func(t *testing.T) {
		t.Parallel()

		ts, received := newRecordingServer(t, http.StatusOK, testPayload{})
		client := New(ts.URL,
			WithInterceptor(func(req *http.Request) error {
				req.Header.Set("X-Trace", "first")
				return nil
			}),
			WithInterceptor(func(req *http.Request) error {
				req.Header.Set("X-Trace", req.Header.Get("X-Trace")+",second")
				return nil
			}),
		)

		if err := client.GetJSON(context.Background(), "/books", nil); err != nil {
			t.Fatalf("GetJSON()でエラーが発生: %v", err)
		}
		if got := received.Headers.Get("X-Trace"); got != "first,second" {
			t.Errorf("X-Trace = %q, want %q", got, "first,second")
		}
	})

	t.Run("インターセプタがエラーを返した場合はリクエストが送信されないこと", func(t *testing.T) {
		t.Parallel()

		called := false
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		sentinel := errors.New("blocked")
		client := New(ts.URL, WithInterceptor(func(*http.Request) error { return sentinel }))

		err := client.GetJSON(context.Background(), "/books", nil)
		if !errors.Is(err, sentinel) {
			t.Errorf("err = %v, want %v", err, sentinel)
		}
		if called {
			t.Error("インターセプタのエラー後にリクエストが送信された")
		}
	})
}
