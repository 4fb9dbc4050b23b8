package client

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/nao1215/bookmanager/pkg/api"
	"github.com/nao1215/bookmanager/pkg/credential"
	"github.com/nao1215/bookmanager/pkg/httpclient"
	"github.com/nao1215/bookmanager/pkg/localstorage"
	"github.com/nao1215/bookmanager/pkg/router"
)

// ルート名。
const (
	RouteHome  = "home"
	RouteLogin = "login"
)

// HomePath は書籍一覧画面のパス。
const HomePath = "/"

// App はクライアントのナビゲーションコンテキスト。
type App struct {
	// router は画面遷移と認証ガードを担当する。
	router *router.Router
	// credentials は認証トークンの保存先へのアクセサ。
	credentials *credential.Accessor
	// api は書籍管理APIのクライアント。
	api *api.Client
	// out は画面とメッセージの出力先。
	out io.Writer
	// page はHomeViewが表示するページ番号（1始まり）。
	page int
	// pageSize はHomeViewの1ページあたりの件数。
	pageSize int
}

// NewApp は新しいAppを生成する。
// storageに保存されたクレデンシャルをルーターのガードとAPIクライアントの両方が参照する。
func NewApp(storage localstorage.Storage, baseURL string, out io.Writer, opts ...httpclient.Option) (*App, error) {
	accessor := credential.NewAccessor(storage)
	a := &App{
		credentials: accessor,
		api:         api.New(baseURL, accessor, opts...),
		out:         out,
		page:        1,
		pageSize:    api.DefaultPageSize,
	}

	r, err := router.New(a.routes())
	if err != nil {
		return nil, fmt.Errorf("ルーターの初期化に失敗: %w", err)
	}
	r.BeforeEach(router.RequireAuth(accessor))
	a.router = r
	return a, nil
}

// routes はクライアントの静的なルート定義を返す。
func (a *App) routes() []router.Route {
	return []router.Route{
		{
			Path:         HomePath,
			Name:         RouteHome,
			Component:    func() router.Component { return newHomeView(a, a.page, a.pageSize) },
			RequiresAuth: true,
		},
		{
			Path:      router.LoginPath,
			Name:      RouteLogin,
			Component: func() router.Component { return newLoginView() },
		},
	}
}

// Router はAppのルーターを返す。
func (a *App) Router() *router.Router {
	return a.router
}

// API はAppのAPIクライアントを返す。
func (a *App) API() *api.Client {
	return a.api
}

// Credentials はAppのクレデンシャルアクセサを返す。
func (a *App) Credentials() *credential.Accessor {
	return a.credentials
}

// SetPage はHomeViewが表示するページを設定する。0以下の値は既定値に戻す。
func (a *App) SetPage(page, pageSize int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = api.DefaultPageSize
	}
	a.page = page
	a.pageSize = pageSize
}

// Navigate は指定パスへ遷移し、許可された画面を描画する。
func (a *App) Navigate(ctx context.Context, path string) (*router.Navigation, error) {
	nav, err := a.router.Push(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("画面遷移に失敗: %w", err)
	}
	if nav.State == router.StateRedirected {
		log.Printf("%s は %s にリダイレクトされました", nav.RedirectedFrom, nav.Route.Path)
	}
	if nav.Component == nil {
		return nav, nil
	}
	if err := nav.Component.Render(ctx, a.out); err != nil {
		return nav, fmt.Errorf("画面の描画に失敗: %w", err)
	}
	return nav, nil
}

// Login はログインしてクレデンシャルを保存し、書籍一覧へ遷移する。
func (a *App) Login(ctx context.Context, username, password string) (*router.Navigation, error) {
	resp, err := a.api.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("ログインに失敗: %w", err)
	}
	if err := a.credentials.Write(ctx, resp.AccessToken); err != nil {
		return nil, err
	}
	fmt.Fprintln(a.out, successStyle.Render(fmt.Sprintf("%s としてログインしました", username)))
	return a.Navigate(ctx, HomePath)
}

// Register はユーザーを登録する。ログインは行わない。
func (a *App) Register(ctx context.Context, username, password string) (*api.User, error) {
	user, err := a.api.Register(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("ユーザー登録に失敗: %w", err)
	}
	fmt.Fprintln(a.out, successStyle.Render(fmt.Sprintf("ユーザー %s を登録しました", user.Username)))
	return user, nil
}

// Logout はクレデンシャルを削除し、ログイン画面へ遷移する。
func (a *App) Logout(ctx context.Context) (*router.Navigation, error) {
	a.credentials.Clear(ctx)
	fmt.Fprintln(a.out, successStyle.Render("ログアウトしました"))
	return a.Navigate(ctx, router.LoginPath)
}
