package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// maxRedirects は1回の遷移で許容するリダイレクトの最大回数。
const maxRedirects = 10

var (
	// ErrRouteNotFound は遷移先のパスに一致するルートが存在しない場合に返される。
	ErrRouteNotFound = errors.New("ルートが見つかりません")
	// ErrRedirectLoop はリダイレクトが上限回数を超えた場合に返される。
	ErrRedirectLoop = errors.New("リダイレクトがループしています")
)

// Component はルートに対応する画面。
type Component interface {
	// Render は画面を描画する。
	Render(ctx context.Context, w io.Writer) error
}

// ComponentFunc はComponentを生成するファクトリ関数。
// 遷移が許可された場合にのみ呼び出される。
type ComponentFunc func() Component

// Route は静的なルート定義。
type Route struct {
	// Path はルートのパス（例: "/login"）。
	Path string
	// Name はルートの名前（例: "login"）。
	Name string
	// Component はルートの画面を生成するファクトリ。
	Component ComponentFunc
	// RequiresAuth はこのルートの表示にクレデンシャルが必要かどうか。
	RequiresAuth bool
}

// State は遷移の状態。
type State int

const (
	// StatePending はガードの評価中であることを表す。
	StatePending State = iota
	// StateAllowed は遷移先がそのまま許可されたことを表す。
	StateAllowed
	// StateRedirected は遷移が別のパスへリダイレクトされたことを表す。
	StateRedirected
)

// String は状態の文字列表現を返す。
func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateAllowed:
		return "ALLOWED"
	case StateRedirected:
		return "REDIRECTED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Navigation は1回の遷移の結果。
type Navigation struct {
	// State は遷移の最終状態。
	State State
	// Route は最終的に表示されるルート。
	Route Route
	// RedirectedFrom はリダイレクトされた場合の元の遷移先パス。
	RedirectedFrom string
	// Component は最終ルートのために生成された画面。
	Component Component
}

// Router はルート定義と遷移ガードを保持し、遷移を解決する。
type Router struct {
	// routes は起動時に渡されたルート定義のコピー。
	routes []Route
	// byPath はパスからroutesのインデックスへの対応。
	byPath map[string]int
	// byName は名前からroutesのインデックスへの対応。
	byName map[string]int
	// guards は遷移前に評価するガード。登録順に評価される。
	guards []Guard
	// current は最後に許可されたルート。
	current *Route
}

// New はルート定義から新しいRouterを生成する。
// パスや名前の重複、"/" で始まらないパスはエラーになる。
func New(routes []Route) (*Router, error) {
	r := &Router{
		routes: make([]Route, 0, len(routes)),
		byPath: make(map[string]int, len(routes)),
		byName: make(map[string]int, len(routes)),
	}
	for _, route := range routes {
		if !strings.HasPrefix(route.Path, "/") {
			return nil, fmt.Errorf("パスは \"/\" で始まる必要があります: %q", route.Path)
		}
		path := normalize(route.Path)
		if _, dup := r.byPath[path]; dup {
			return nil, fmt.Errorf("パスが重複しています: %q", route.Path)
		}
		if route.Name != "" {
			if _, dup := r.byName[route.Name]; dup {
				return nil, fmt.Errorf("ルート名が重複しています: %q", route.Name)
			}
			r.byName[route.Name] = len(r.routes)
		}
		route.Path = path
		r.byPath[path] = len(r.routes)
		r.routes = append(r.routes, route)
	}
	return r, nil
}

// BeforeEach は全ての遷移の前に評価されるガードを登録する。
func (r *Router) BeforeEach(g Guard) {
	r.guards = append(r.guards, g)
}

// Routes はルート定義のコピーを返す。
func (r *Router) Routes() []Route {
	out := make([]Route, len(r.routes))
	copy(out, r.routes)
	return out
}

// Resolve はパスに一致するルートを返す。
func (r *Router) Resolve(path string) (Route, bool) {
	i, ok := r.byPath[normalize(path)]
	if !ok {
		return Route{}, false
	}
	return r.routes[i], true
}

// ResolveName は名前に一致するルートを返す。
func (r *Router) ResolveName(name string) (Route, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Route{}, false
	}
	return r.routes[i], true
}

// Current は最後に許可されたルートを返す。まだ遷移していない場合はokがfalseになる。
func (r *Router) Current() (Route, bool) {
	if r.current == nil {
		return Route{}, false
	}
	return *r.current, true
}

// Push は指定パスへ遷移する。
// ガードがリダイレクトを指示した場合はリダイレクト先を同じ手順で解決し直す。
// 最終的に許可されたルートのコンポーネントだけが生成される。
func (r *Router) Push(ctx context.Context, path string) (*Navigation, error) {
	to, ok := r.Resolve(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRouteNotFound, path)
	}

	nav := &Navigation{State: StatePending}
	for redirects := 0; ; redirects++ {
		dest := r.runGuards(ctx, to)
		if dest == "" {
			break
		}
		if redirects >= maxRedirects {
			return nil, fmt.Errorf("%w: %s", ErrRedirectLoop, path)
		}
		next, ok := r.Resolve(dest)
		if !ok {
			return nil, fmt.Errorf("リダイレクト先の解決に失敗: %w: %s", ErrRouteNotFound, dest)
		}
		if nav.RedirectedFrom == "" {
			nav.RedirectedFrom = to.Path
		}
		to = next
	}

	nav.State = StateAllowed
	if nav.RedirectedFrom != "" {
		nav.State = StateRedirected
	}
	nav.Route = to
	if to.Component != nil {
		nav.Component = to.Component()
	}
	r.current = &to
	return nav, nil
}

// PushName は名前で指定したルートへ遷移する。
func (r *Router) PushName(ctx context.Context, name string) (*Navigation, error) {
	route, ok := r.ResolveName(name)
	if !ok {
		return nil, fmt.Errorf("%w: name=%s", ErrRouteNotFound, name)
	}
	return r.Push(ctx, route.Path)
}

// runGuards はガードを登録順に評価し、最初に返されたリダイレクト先を返す。
// 全てのガードが許可した場合は空文字列を返す。
func (r *Router) runGuards(ctx context.Context, to Route) string {
	var from *Route
	if r.current != nil {
		c := *r.current
		from = &c
	}
	for _, g := range r.guards {
		if d := g(ctx, to, from); d.redirect != "" {
			return d.redirect
		}
	}
	return ""
}

// normalize はパス末尾の "/" を取り除く。ルート "/" はそのまま返す。
func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}
