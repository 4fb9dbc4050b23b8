package client

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nao1215/bookmanager/pkg/api"
	"github.com/nao1215/bookmanager/pkg/router"
)

var (
	_ router.Component = (*HomeView)(nil)
	_ router.Component = (*LoginView)(nil)
)

// HomeView は書籍一覧を1ページ分表示する画面。認証が必要なルートに対応する。
type HomeView struct {
	app      *App
	page     int
	pageSize int
}

// newHomeView は新しいHomeViewを生成する。
func newHomeView(app *App, page, pageSize int) *HomeView {
	return &HomeView{app: app, page: page, pageSize: pageSize}
}

// Render は書籍一覧を取得して表形式で描画する。
func (v *HomeView) Render(ctx context.Context, w io.Writer) error {
	page, err := v.app.api.ListBooksPage(ctx, v.page, v.pageSize)
	if err != nil {
		return fmt.Errorf("書籍一覧の取得に失敗: %w", err)
	}
	_, err = io.WriteString(w, renderBookPage(page, v.page, v.pageSize)+"\n")
	return err
}

// LoginView はログインを促す画面。認証不要のルートに対応する。
type LoginView struct{}

// newLoginView は新しいLoginViewを生成する。
func newLoginView() *LoginView {
	return &LoginView{}
}

// Render はログイン方法の案内を描画する。
func (v *LoginView) Render(_ context.Context, w io.Writer) error {
	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("ログイン"),
		"書籍一覧を表示するにはログインしてください。",
		"",
		helpStyle.Render("bookclient login -u <ユーザー名> -p <パスワード>"),
		helpStyle.Render("bookclient register -u <ユーザー名> -p <パスワード>"),
	)
	_, err := io.WriteString(w, panelStyle.Render(body)+"\n")
	return err
}

// renderBookPage は書籍一覧のページを表形式の文字列にする。
func renderBookPage(page *api.BookPage, current, pageSize int) string {
	title := titleStyle.Render("書籍一覧")
	if len(page.Data) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, helpStyle.Render("書籍が登録されていません"))
	}

	rows := make([][]string, 0, len(page.Data))
	for _, b := range page.Data {
		rows = append(rows, []string{
			strconv.FormatInt(b.ID, 10),
			b.Title,
			b.Author,
			optionalInt(b.PublishedYear),
			optionalString(b.Genre),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers("ID", "タイトル", "著者", "出版年", "ジャンル").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	footer := helpStyle.Render(fmt.Sprintf("ページ %d/%d（全 %d 件）", current, totalPages(page.Total, pageSize), page.Total))
	return lipgloss.JoinVertical(lipgloss.Left, title, t.String(), footer)
}

// renderBook は書籍1件を項目ごとに描画する。
func renderBook(b *api.Book) string {
	lines := []string{
		field("ID", strconv.FormatInt(b.ID, 10)),
		field("タイトル", b.Title),
		field("著者", b.Author),
		field("出版年", optionalInt(b.PublishedYear)),
		field("ジャンル", optionalString(b.Genre)),
		field("作成日時", b.CreatedAt.Local().Format("2006-01-02 15:04:05")),
		field("更新日時", b.UpdatedAt.Local().Format("2006-01-02 15:04:05")),
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

// field はラベル付きの1行を描画する。
func field(label, value string) string {
	return labelStyle.Render(label) + value
}

// totalPages は総件数とページサイズから総ページ数を求める。最低1ページ。
func totalPages(total, pageSize int) int {
	if pageSize < 1 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// optionalInt はnilを "-" として表示用の文字列にする。
func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

// optionalString はnilや空文字を "-" として表示用の文字列にする。
func optionalString(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}
	return *v
}
