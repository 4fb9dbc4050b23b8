package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nao1215/bookmanager/pkg/httpclient"
)

// DefaultBaseURL はバックエンドのデフォルトのベースURL。
const DefaultBaseURL = "http://localhost:8000"

// DefaultPageSize はページ分割取得のデフォルトのページサイズ。
const DefaultPageSize = 5

// TokenReader はリクエストごとにクレデンシャルを読み出す。
type TokenReader interface {
	// Read は保存されているクレデンシャルを返す。存在しない場合はokがfalseになる。
	Read(ctx context.Context) (token string, ok bool)
}

// BearerToken はクレデンシャルが存在する場合に
// Authorization: Bearer <token> ヘッダーを付与するインターセプタを返す。
// クレデンシャルが存在しない場合はヘッダー自体を付与しない。
func BearerToken(tokens TokenReader) httpclient.Interceptor {
	return func(req *http.Request) error {
		req.Header.Del("Authorization")
		if token, ok := tokens.Read(req.Context()); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return nil
	}
}

// Client は書籍管理APIのクライアント。
type Client struct {
	// http はベースURLとインターセプタを持つHTTPクライアント。
	http *httpclient.Client
}

// New は新しいAPIクライアントを生成する。
// 送信する全リクエストにtokensから読んだクレデンシャルを付与する。
func New(baseURL string, tokens TokenReader, opts ...httpclient.Option) *Client {
	opts = append([]httpclient.Option{httpclient.WithInterceptor(BearerToken(tokens))}, opts...)
	return &Client{http: httpclient.New(baseURL, opts...)}
}

// BaseURL は接続先のベースURLを返す。
func (c *Client) BaseURL() string {
	return c.http.BaseURL()
}

// ListBooks は書籍一覧を取得する（GET /books）。
func (c *Client) ListBooks(ctx context.Context) (*BookPage, error) {
	var page BookPage
	if err := c.http.GetJSON(ctx, "/books", &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// PageQuery は1始まりのページ番号とページサイズから一覧取得のパスを組み立てる。
// pageSizeが0以下の場合はDefaultPageSize、pageが1未満の場合は1として扱う。
func PageQuery(page, pageSize int) string {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	skip := (page - 1) * pageSize
	return fmt.Sprintf("/books?skip=%d&limit=%d", skip, pageSize)
}

// ListBooksPage は書籍一覧をページ単位で取得する（GET /books?skip=&limit=）。
func (c *Client) ListBooksPage(ctx context.Context, page, pageSize int) (*BookPage, error) {
	var p BookPage
	if err := c.http.GetJSON(ctx, PageQuery(page, pageSize), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetBook は書籍を1件取得する（GET /books/{id}）。
func (c *Client) GetBook(ctx context.Context, id int64) (*Book, error) {
	var book Book
	if err := c.http.GetJSON(ctx, fmt.Sprintf("/books/%d", id), &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// CreateBook は書籍を作成する（POST /books）。
func (c *Client) CreateBook(ctx context.Context, req BookCreateRequest) (*Book, error) {
	var book Book
	if err := c.http.PostJSON(ctx, "/books", req, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// UpdateBook は書籍を更新する（PUT /books/{id}）。
func (c *Client) UpdateBook(ctx context.Context, id int64, req BookUpdateRequest) (*Book, error) {
	var book Book
	if err := c.http.PutJSON(ctx, fmt.Sprintf("/books/%d", id), req, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// DeleteBook は書籍を削除する（DELETE /books/{id}）。
func (c *Client) DeleteBook(ctx context.Context, id int64) (*MessageResponse, error) {
	var msg MessageResponse
	if err := c.http.DeleteJSON(ctx, fmt.Sprintf("/books/%d", id), &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Login はユーザー名とパスワードで認証する（POST /login）。
// 返されたトークンの保存は呼び出し元が行う。
func (c *Client) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	var token TokenResponse
	if err := c.http.PostJSON(ctx, "/login", Credentials{Username: username, Password: password}, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// Register は新しいアカウントを登録する（POST /register）。
func (c *Client) Register(ctx context.Context, username, password string) (*User, error) {
	var user User
	if err := c.http.PostJSON(ctx, "/register", Credentials{Username: username, Password: password}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Profile は現在のユーザーのプロフィールを取得する（GET /me）。
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.http.GetJSON(ctx, "/me", &p); err != nil {
		return nil, err
	}
	return &p, nil
}
