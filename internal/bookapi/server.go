package bookapi

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/nao1215/bookmanager/internal/config"
	"github.com/nao1215/bookmanager/pkg/middleware"
)

// shutdownTimeout はサーバー停止時に処理中のリクエストを待つ時間。
const shutdownTimeout = 10 * time.Second

// Server は書籍管理APIのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// db はSQLiteデータベース接続。
	db *sql.DB
	// store は書籍とユーザーの永続化層。
	store *Store
	// jwtSecret はJWT署名用の秘密鍵。
	jwtSecret string
	// tokenTTL はアクセストークンの有効期間。
	tokenTTL time.Duration
	// bcryptCost はパスワードハッシュのコスト。
	bcryptCost int
	// sanitizer は書籍のテキスト項目からHTMLを除去するポリシー。
	sanitizer *bluemonday.Policy
}

// NewServer は設定に従ってデータベースを開き、新しい書籍APIサーバーを生成する。
func NewServer(ctx context.Context, cfg *config.Server) (*Server, error) {
	sqlDB, err := openDB(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	s, err := newServer(ctx, sqlDB, cfg)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

// openDB はSQLiteデータベースファイルを開く。
func openDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("データベースディレクトリの作成に失敗: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return sqlDB, nil
}

// newServer は接続済みのデータベースを使ってサーバーを組み立てる。
func newServer(ctx context.Context, sqlDB *sql.DB, cfg *config.Server) (*Server, error) {
	if err := initSchema(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = config.DefaultTokenTTL
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	s := &Server{
		router:     router,
		port:       cfg.Port,
		db:         sqlDB,
		store:      NewStore(sqlDB),
		jwtSecret:  cfg.JWTSecret,
		tokenTTL:   ttl,
		bcryptCost: bcrypt.DefaultCost,
		sanitizer:  bluemonday.StrictPolicy(),
	}
	s.setupRoutes()

	return s, nil
}

// Handler はサーバーのHTTPハンドラを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run はHTTPサーバーを起動し、ctxがキャンセルされると停止する。
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Printf("書籍APIサーバーを停止します")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("サーバーの停止に失敗: %w", err)
		}
		return nil
	}
}

// Close はデータベース接続を閉じる。
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	auth := middleware.JWTAuth(s.jwtSecret)

	// ユーザー認証（認証不要）
	s.router.POST("/register", s.handleRegister())
	s.router.POST("/login", s.handleLogin())
	s.router.GET("/me", s.handleMe())
	s.router.GET("/protected-endpoint", auth, s.handleProtected())

	books := s.router.Group("/books")
	{
		// 参照系は認証不要
		books.GET("", s.handleListBooks())
		books.GET("/:id", s.handleGetBook())

		books.POST("", auth, s.handleCreateBook())
		books.PUT("/:id", auth, s.handleUpdateBook())
		books.DELETE("/:id", auth, s.handleDeleteBook())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "bookapi"})
	})
}

// plainTextUnescaper はサニタイズ後のテキストで記号のエスケープだけを戻す。
// &lt; と &gt; は戻さない。
var plainTextUnescaper = strings.NewReplacer("&amp;", "&", "&#34;", `"`, "&#39;", "'")

// sanitizeText は実体参照を展開してからHTMLタグを除去し前後の空白を取り除く。
func (s *Server) sanitizeText(v string) string {
	cleaned := s.sanitizer.Sanitize(html.UnescapeString(v))
	return strings.TrimSpace(plainTextUnescaper.Replace(cleaned))
}

// respondError は {"detail": ...} 形式のエラーレスポンスを返す。
func respondError(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}
