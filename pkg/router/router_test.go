package router

import (
	"context"
	"errors"
	"io"
	"testing"
)

// fakeComponent はテスト用の画面。
type fakeComponent struct {
	name string
}

// Render は画面名を書き出す。
func (f *fakeComponent) Render(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, f.name)
	return err
}

// fakeChecker はログイン状態を固定値で返すLoginChecker。
type fakeChecker struct {
	loggedIn bool
}

// IsLoggedIn は設定されたログイン状態を返す。
func (f *fakeChecker) IsLoggedIn(context.Context) bool {
	return f.loggedIn
}

// testRoutes はテスト用のルート定義と、各コンポーネントの生成回数を返す。
func testRoutes() ([]Route, map[string]*int) {
	counts := map[string]*int{"home": new(int), "login": new(int)}
	factory := func(name string) ComponentFunc {
		return func() Component {
			*counts[name]++
			return &fakeComponent{name: name}
		}
	}
	return []Route{
		{Path: "/", Name: "home", Component: factory("home"), RequiresAuth: true},
		{Path: "/login", Name: "login", Component: factory("login")},
	}, counts
}

// newTestRouter は認証ガード付きのテスト用Routerを生成する。
func newTestRouter(t *testing.T, checker LoginChecker) (*Router, map[string]*int) {
	t.Helper()

	routes, counts := testRoutes()
	r, err := New(routes)
	if err != nil {
		t.Fatalf("New()でエラーが発生: %v", err)
	}
	r.BeforeEach(RequireAuth(checker))
	return r, counts
}

// TestNew はRouterの生成を検証する。
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("パスが重複している場合はエラーになること", func(t *testing.T) {
		t.Parallel()

		_, err := New([]Route{{Path: "/a", Name: "a"}, {Path: "/a/", Name: "b"}})
		if err == nil {
			t.Fatal("New()がエラーを返すべきだが、nilが返った")
		}
	})

	t.Run("名前が重複している場合はエラーになること", func(t *testing.T) {
		t.Parallel()

		_, err := New([]Route{{Path: "/a", Name: "x"}, {Path: "/b", Name: "x"}})
		if err == nil {
			t.Fatal("New()がエラーを返すべきだが、nilが返った")
		}
	})

	t.Run("スラッシュで始まらないパスはエラーになること", func(t *testing.T) {
		t.Parallel()

		if _, err := New([]Route{{Path: "login"}}); err == nil {
			t.Fatal("New()がエラーを返すべきだが、nilが返った")
		}
	})

	t.Run("渡したスライスを変更してもルート定義は変わらないこと", func(t *testing.T) {
		t.Parallel()

		routes, _ := testRoutes()
		r, err := New(routes)
		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}
		routes[0].RequiresAuth = false

		home, ok := r.Resolve("/")
		if !ok {
			t.Fatal("ルート / が見つからない")
		}
		if !home.RequiresAuth {
			t.Error("RequiresAuthが外部から書き換えられた")
		}
	})
}

// TestPush は認証ガード付きの遷移を検証する。
func TestPush(t *testing.T) {
	t.Parallel()

	t.Run("未ログインで保護ルートに遷移するとログイン画面へリダイレクトされること", func(t *testing.T) {
		t.Parallel()

		r, counts := newTestRouter(t, &fakeChecker{loggedIn: false})

		nav, err := r.Push(t.Context(), "/")
		if err != nil {
			t.Fatalf("Push()でエラーが発生: %v", err)
		}
		if nav.State != StateRedirected {
			t.Errorf("State = %s, want %s", nav.State, StateRedirected)
		}
		if nav.Route.Path != "/login" {
			t.Errorf("Route.Path = %q, want %q", nav.Route.Path, "/login")
		}
		if nav.RedirectedFrom != "/" {
			t.Errorf("RedirectedFrom = %q, want %q", nav.RedirectedFrom, "/")
		}
		if *counts["home"] != 0 {
			t.Errorf("保護ルートのコンポーネントが %d 回生成された", *counts["home"])
		}
		if *counts["login"] != 1 {
			t.Errorf("ログイン画面の生成回数 = %d, want 1", *counts["login"])
		}
	})

	t.Run("ログイン済みなら保護ルートへそのまま遷移できること", func(t *testing.T) {
		t.Parallel()

		r, counts := newTestRouter(t, &fakeChecker{loggedIn: true})

		nav, err := r.Push(t.Context(), "/")
		if err != nil {
			t.Fatalf("Push()でエラーが発生: %v", err)
		}
		if nav.State != StateAllowed {
			t.Errorf("State = %s, want %s", nav.State, StateAllowed)
		}
		if nav.Route.Name != "home" {
			t.Errorf("Route.Name = %q, want %q", nav.Route.Name, "home")
		}
		if nav.RedirectedFrom != "" {
			t.Errorf("RedirectedFrom = %q, want empty", nav.RedirectedFrom)
		}
		if *counts["home"] != 1 {
			t.Errorf("ホーム画面の生成回数 = %d, want 1", *counts["home"])
		}
	})

	t.Run("ログイン画面はログイン状態に関わらず表示されること", func(t *testing.T) {
		t.Parallel()

		for _, loggedIn := range []bool{false, true} {
			r, _ := newTestRouter(t, &fakeChecker{loggedIn: loggedIn})

			nav, err := r.Push(t.Context(), "/login")
			if err != nil {
				t.Fatalf("Push()でエラーが発生 (loggedIn=%v): %v", loggedIn, err)
			}
			if nav.State != StateAllowed || nav.Route.Path != "/login" {
				t.Errorf("loggedIn=%v: got (%s, %q), want (ALLOWED, /login)", loggedIn, nav.State, nav.Route.Path)
			}
		}
	})

	t.Run("ログアウト後の保護ルートへの遷移はリダイレクトされること", func(t *testing.T) {
		t.Parallel()

		checker := &fakeChecker{loggedIn: true}
		r, _ := newTestRouter(t, checker)

		if nav, err := r.Push(t.Context(), "/"); err != nil || nav.State != StateAllowed {
			t.Fatalf("ログイン中の遷移が許可されなかった: nav=%+v, err=%v", nav, err)
		}

		checker.loggedIn = false
		nav, err := r.Push(t.Context(), "/")
		if err != nil {
			t.Fatalf("Push()でエラーが発生: %v", err)
		}
		if nav.State != StateRedirected || nav.Route.Path != "/login" {
			t.Errorf("got (%s, %q), want (REDIRECTED, /login)", nav.State, nav.Route.Path)
		}
	})

	t.Run("存在しないパスはErrRouteNotFoundを返すこと", func(t *testing.T) {
		t.Parallel()

		r, _ := newTestRouter(t, &fakeChecker{})
		if _, err := r.Push(t.Context(), "/unknown"); !errors.Is(err, ErrRouteNotFound) {
			t.Errorf("err = %v, want ErrRouteNotFound", err)
		}
	})

	t.Run("末尾スラッシュやクエリ付きのパスも解決できること", func(t *testing.T) {
		t.Parallel()

		r, _ := newTestRouter(t, &fakeChecker{})
		nav, err := r.Push(t.Context(), "/login/?next=/")
		if err != nil {
			t.Fatalf("Push()でエラーが発生: %v", err)
		}
		if nav.Route.Name != "login" {
			t.Errorf("Route.Name = %q, want %q", nav.Route.Name, "login")
		}
	})

	t.Run("Currentは最後に許可されたルートを返すこと", func(t *testing.T) {
		t.Parallel()

		r, _ := newTestRouter(t, &fakeChecker{})
		if _, ok := r.Current(); ok {
			t.Fatal("遷移前にCurrent()がokを返した")
		}
		if _, err := r.Push(t.Context(), "/"); err != nil {
			t.Fatalf("Push()でエラーが発生: %v", err)
		}
		cur, ok := r.Current()
		if !ok || cur.Path != "/login" {
			t.Errorf("Current() = (%q, %v), want (/login, true)", cur.Path, ok)
		}
	})
}

// TestPushRedirectLoop はリダイレクトループの検出を検証する。
func TestPushRedirectLoop(t *testing.T) {
	t.Parallel()

	r, err := New([]Route{
		{Path: "/", Name: "home", RequiresAuth: true},
		{Path: "/login", Name: "login", RequiresAuth: true},
	})
	if err != nil {
		t.Fatalf("New()でエラーが発生: %v", err)
	}
	r.BeforeEach(RequireAuth(&fakeChecker{loggedIn: false}))

	if _, err := r.Push(t.Context(), "/"); !errors.Is(err, ErrRedirectLoop) {
		t.Errorf("err = %v, want ErrRedirectLoop", err)
	}
}

// TestBeforeEach は複数ガードの評価順を検証する。
func TestBeforeEach(t *testing.T) {
	t.Parallel()

	t.Run("ガードは登録順に評価され最初のリダイレクトが採用されること", func(t *testing.T) {
		t.Parallel()

		r, _ := newTestRouter(t, &fakeChecker{loggedIn: false})
		var calls []string
		r.BeforeEach(func(_ context.Context, to Route, _ *Route) Decision {
			calls = append(calls, to.Path)
			return Next()
		})

		if _, err := r.Push(t.Context(), "/"); err != nil {
			t.Fatalf("Push()でエラーが発生: %v", err)
		}
		// 認証ガードが "/" でリダイレクトするため、2番目のガードは "/login" でのみ呼ばれる
		if len(calls) != 1 || calls[0] != "/login" {
			t.Errorf("calls = %v, want [/login]", calls)
		}
	})

	t.Run("fromには直前に許可されたルートが渡されること", func(t *testing.T) {
		t.Parallel()

		r, _ := newTestRouter(t, &fakeChecker{loggedIn: true})
		var froms []string
		r.BeforeEach(func(_ context.Context, _ Route, from *Route) Decision {
			if from == nil {
				froms = append(froms, "<nil>")
			} else {
				froms = append(froms, from.Path)
			}
			return Next()
		})

		for _, p := range []string{"/login", "/"} {
			if _, err := r.Push(t.Context(), p); err != nil {
				t.Fatalf("Push(%q)でエラーが発生: %v", p, err)
			}
		}
		if len(froms) != 2 || froms[0] != "<nil>" || froms[1] != "/login" {
			t.Errorf("froms = %v, want [<nil> /login]", froms)
		}
	})
}

// TestPushName は名前指定の遷移を検証する。
func TestPushName(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t, &fakeChecker{loggedIn: true})

	nav, err := r.PushName(t.Context(), "home")
	if err != nil {
		t.Fatalf("PushName()でエラーが発生: %v", err)
	}
	if nav.Route.Path != "/" {
		t.Errorf("Route.Path = %q, want %q", nav.Route.Path, "/")
	}
	if _, err := r.PushName(t.Context(), "missing"); !errors.Is(err, ErrRouteNotFound) {
		t.Errorf("err = %v, want ErrRouteNotFound", err)
	}
}

// TestState は状態の文字列表現を検証する。
func TestState(t *testing.T) {
	t.Parallel()

	tests := map[State]string{
		StatePending:    "PENDING",
		StateAllowed:    "ALLOWED",
		StateRedirected: "REDIRECTED",
		State(42):       "State(42)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

// TestDecision は判定値のヘルパーを検証する。
func TestDecision(t *testing.T) {
	t.Parallel()

	if _, ok := Next().Redirected(); ok {
		t.Error("Next().Redirected() ok = true, want false")
	}
	if dest, ok := Redirect("/login").Redirected(); !ok || dest != "/login" {
		t.Errorf("Redirect().Redirected() = (%q, %v), want (/login, true)", dest, ok)
	}
}
