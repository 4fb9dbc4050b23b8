package router

import "context"

// LoginPath はログイン画面のパス。認証ガードのリダイレクト先。
const LoginPath = "/login"

// Decision はガードの判定結果。
type Decision struct {
	// redirect はリダイレクト先のパス。空の場合は遷移を許可する。
	redirect string
}

// Next は遷移をそのまま許可する判定を返す。
func Next() Decision {
	return Decision{}
}

// Redirect は指定パスへのリダイレクトを指示する判定を返す。
func Redirect(path string) Decision {
	return Decision{redirect: path}
}

// Redirected はリダイレクトの指示かどうかとリダイレクト先を返す。
func (d Decision) Redirected() (string, bool) {
	return d.redirect, d.redirect != ""
}

// Guard は遷移の前に評価される関数。
// fromは現在のルートで、初回の遷移ではnilになる。
type Guard func(ctx context.Context, to Route, from *Route) Decision

// LoginChecker はログイン状態を判定する。
type LoginChecker interface {
	// IsLoggedIn はクレデンシャルが存在するかどうかを返す。
	IsLoggedIn(ctx context.Context) bool
}

// RequireAuth は認証が必要なルートへの未ログイン状態での遷移を
// ログイン画面へリダイレクトするガードを返す。
// ログイン画面自体は認証不要のため、リダイレクトはループしない。
func RequireAuth(checker LoginChecker) Guard {
	return func(ctx context.Context, to Route, _ *Route) Decision {
		if to.RequiresAuth && !checker.IsLoggedIn(ctx) {
			return Redirect(LoginPath)
		}
		return Next()
	}
}
