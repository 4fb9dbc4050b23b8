package client

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/bookmanager/pkg/api"
	"github.com/nao1215/bookmanager/pkg/httpclient"
)

// ErrUsage はコマンドの引数が不正な場合のエラー。
var ErrUsage = errors.New("コマンドの使い方が正しくありません")

// usage はコマンドの使い方。
const usage = `使い方: bookclient <command> [arguments]

コマンド:
  open [path]                         画面を開く（既定: /）
  login -u USER -p PASS               ログインしてトークンを保存する
  register -u USER -p PASS            ユーザーを登録する
  logout                              保存したトークンを削除する
  me                                  ログイン状態を確認する
  books list [-page N] [-size M]      書籍一覧を表示する（要ログイン）
  books get ID                        書籍を1件表示する
  books create -title T -author A [-year Y] [-genre G]
  books update ID [-title T] [-author A] [-year Y] [-genre G]
  books delete ID
`

// Usage はコマンドの使い方を書き出す。
func Usage(w io.Writer) {
	fmt.Fprint(w, usage)
}

// Run はコマンドライン引数を解釈してコマンドを実行する。
func Run(ctx context.Context, app *App, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: コマンドを指定してください", ErrUsage)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "open":
		return runOpen(ctx, app, rest)
	case "login":
		return runLogin(ctx, app, rest)
	case "register":
		return runRegister(ctx, app, rest)
	case "logout":
		_, err := app.Logout(ctx)
		return err
	case "me":
		return runMe(ctx, app)
	case "books":
		return runBooks(ctx, app, rest)
	case "help", "-h", "--help":
		Usage(app.out)
		return nil
	default:
		return fmt.Errorf("%w: 不明なコマンド %q", ErrUsage, cmd)
	}
}

// newFlagSet はエラー時に終了しないフラグセットを生成する。
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseFlags はフラグを解析し、エラーをErrUsageで包む。
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUsage, fs.Name(), err)
	}
	return nil
}

// runOpen は指定パスの画面を開く。
func runOpen(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("open")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	path := HomePath
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	_, err := app.Navigate(ctx, path)
	return err
}

// parseCredentials は -u と -p を解析する。
func parseCredentials(name string, args []string) (string, string, error) {
	fs := newFlagSet(name)
	username := fs.String("u", "", "ユーザー名")
	password := fs.String("p", "", "パスワード")
	if err := parseFlags(fs, args); err != nil {
		return "", "", err
	}
	if *username == "" || *password == "" {
		return "", "", fmt.Errorf("%w: %s には -u と -p が必要です", ErrUsage, name)
	}
	return *username, *password, nil
}

// runLogin はログインする。
func runLogin(ctx context.Context, app *App, args []string) error {
	username, password, err := parseCredentials("login", args)
	if err != nil {
		return err
	}
	_, err = app.Login(ctx, username, password)
	return err
}

// runRegister はユーザーを登録する。
func runRegister(ctx context.Context, app *App, args []string) error {
	username, password, err := parseCredentials("register", args)
	if err != nil {
		return err
	}
	_, err = app.Register(ctx, username, password)
	return err
}

// runMe はログイン状態を表示する。
func runMe(ctx context.Context, app *App) error {
	if !app.credentials.IsLoggedIn(ctx) {
		fmt.Fprintln(app.out, helpStyle.Render("ログインしていません"))
		return nil
	}
	profile, err := app.api.Profile(ctx)
	if err != nil {
		return fmt.Errorf("ログイン状態の確認に失敗: %w", err)
	}
	fmt.Fprintln(app.out, successStyle.Render(profile.Message))
	return nil
}

// runBooks は books サブコマンドを実行する。
func runBooks(ctx context.Context, app *App, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: books のサブコマンドを指定してください", ErrUsage)
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		return runBooksList(ctx, app, rest)
	case "get":
		return runBooksGet(ctx, app, rest)
	case "create":
		return runBooksCreate(ctx, app, rest)
	case "update":
		return runBooksUpdate(ctx, app, rest)
	case "delete":
		return runBooksDelete(ctx, app, rest)
	default:
		return fmt.Errorf("%w: 不明なサブコマンド books %q", ErrUsage, sub)
	}
}

// runBooksList は書籍一覧画面を開く。未ログインの場合はログイン画面にリダイレクトされる。
func runBooksList(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("books list")
	page := fs.Int("page", 1, "ページ番号")
	size := fs.Int("size", api.DefaultPageSize, "1ページあたりの件数")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	app.SetPage(*page, *size)
	_, err := app.Navigate(ctx, HomePath)
	return err
}

// parseIDAndFlags はIDとフラグを順不同で解析する。
func parseIDAndFlags(fs *flag.FlagSet, args []string) (int64, error) {
	if err := parseFlags(fs, args); err != nil {
		return 0, err
	}
	if fs.NArg() == 0 {
		return 0, fmt.Errorf("%w: %s には書籍IDが必要です", ErrUsage, fs.Name())
	}
	raw, rest := fs.Arg(0), fs.Args()[1:]
	if err := parseFlags(fs, rest); err != nil {
		return 0, err
	}
	if fs.NArg() > 0 {
		return 0, fmt.Errorf("%w: 余分な引数 %q", ErrUsage, strings.Join(fs.Args(), " "))
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: 書籍IDは整数で指定してください: %q", ErrUsage, raw)
	}
	return id, nil
}

// runBooksGet は書籍を1件表示する。
func runBooksGet(ctx context.Context, app *App, args []string) error {
	id, err := parseIDAndFlags(newFlagSet("books get"), args)
	if err != nil {
		return err
	}
	book, err := app.api.GetBook(ctx, id)
	if err != nil {
		return fmt.Errorf("書籍の取得に失敗: %w", err)
	}
	fmt.Fprintln(app.out, renderBook(book))
	return nil
}

// bookFlags は書籍の作成・更新で共通のフラグ。
type bookFlags struct {
	title  string
	author string
	year   int
	genre  string
}

// register はフラグセットに書籍のフラグを登録する。
func (f *bookFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.title, "title", "", "タイトル")
	fs.StringVar(&f.author, "author", "", "著者")
	fs.IntVar(&f.year, "year", 0, "出版年")
	fs.StringVar(&f.genre, "genre", "", "ジャンル")
}

// visited は明示的に指定されたフラグ名の集合を返す。
func visited(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// runBooksCreate は書籍を登録する。
func runBooksCreate(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("books create")
	var f bookFlags
	f.register(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if f.title == "" || f.author == "" {
		return fmt.Errorf("%w: books create には -title と -author が必要です", ErrUsage)
	}

	req := api.BookCreateRequest{Title: f.title, Author: f.author}
	set := visited(fs)
	if set["year"] {
		req.PublishedYear = &f.year
	}
	if set["genre"] {
		req.Genre = &f.genre
	}

	book, err := app.api.CreateBook(ctx, req)
	if err != nil {
		return fmt.Errorf("書籍の登録に失敗: %w", err)
	}
	fmt.Fprintln(app.out, successStyle.Render(fmt.Sprintf("書籍を登録しました（ID: %d）", book.ID)))
	fmt.Fprintln(app.out, renderBook(book))
	return nil
}

// runBooksUpdate は指定されたフラグの項目のみ書籍を更新する。
func runBooksUpdate(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("books update")
	var f bookFlags
	f.register(fs)
	id, err := parseIDAndFlags(fs, args)
	if err != nil {
		return err
	}

	var req api.BookUpdateRequest
	set := visited(fs)
	if set["title"] {
		req.Title = &f.title
	}
	if set["author"] {
		req.Author = &f.author
	}
	if set["year"] {
		req.PublishedYear = &f.year
	}
	if set["genre"] {
		req.Genre = &f.genre
	}
	if len(set) == 0 {
		return fmt.Errorf("%w: books update には更新する項目を1つ以上指定してください", ErrUsage)
	}

	book, err := app.api.UpdateBook(ctx, id, req)
	if err != nil {
		return fmt.Errorf("書籍の更新に失敗: %w", err)
	}
	fmt.Fprintln(app.out, successStyle.Render("書籍を更新しました"))
	fmt.Fprintln(app.out, renderBook(book))
	return nil
}

// runBooksDelete は書籍を削除する。
func runBooksDelete(ctx context.Context, app *App, args []string) error {
	id, err := parseIDAndFlags(newFlagSet("books delete"), args)
	if err != nil {
		return err
	}
	resp, err := app.api.DeleteBook(ctx, id)
	if err != nil {
		return fmt.Errorf("書籍の削除に失敗: %w", err)
	}
	fmt.Fprintln(app.out, successStyle.Render(resp.Message))
	return nil
}

// DescribeError はエラーを利用者向けの1行に整形する。
// APIのエラーレスポンスに detail が含まれる場合はそれを表示する。
func DescribeError(err error) string {
	var httpErr *httpclient.HTTPError
	if errors.As(err, &httpErr) {
		var body struct {
			Detail any `json:"detail"`
		}
		if json.Unmarshal(httpErr.Body, &body) == nil && body.Detail != nil {
			return errorStyle.Render(fmt.Sprintf("APIエラー (%d): %v", httpErr.StatusCode, body.Detail))
		}
		return errorStyle.Render(fmt.Sprintf("APIエラー (%d)", httpErr.StatusCode))
	}
	return errorStyle.Render(err.Error())
}
