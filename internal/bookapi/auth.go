package bookapi

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/nao1215/bookmanager/pkg/middleware"
)

// credentialsRequest はユーザー登録・ログインのリクエストボディ。
type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// userResponse は登録されたユーザーのレスポンス。パスワードは含めない。
type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// tokenResponse はログイン成功時のレスポンス。
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// handleRegister はユーザーを登録するハンドラを返す。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusUnprocessableEntity, fmt.Sprintf("Invalid request body: %v", err))
			return
		}

		ctx := c.Request.Context()
		if _, err := s.store.GetUserByUsername(ctx, req.Username); err == nil {
			respondError(c, http.StatusBadRequest, "Username already exists")
			return
		} else if !errors.Is(err, ErrUserNotFound) {
			respondError(c, http.StatusInternalServerError, "Failed to register user")
			log.Printf("ユーザー取得エラー: %v", err)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			respondError(c, http.StatusUnprocessableEntity, "Password is too long")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to register user")
			log.Printf("パスワードハッシュ生成エラー: %v", err)
			return
		}

		user, err := s.store.CreateUser(ctx, req.Username, string(hash))
		if errors.Is(err, ErrUsernameTaken) {
			respondError(c, http.StatusBadRequest, "Username already exists")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to register user")
			log.Printf("ユーザー登録エラー: %v", err)
			return
		}

		log.Printf("ユーザーを登録しました: username=%s", user.Username)
		c.JSON(http.StatusOK, userResponse{
			ID:        user.ID,
			Username:  user.Username,
			CreatedAt: user.CreatedAt,
		})
	}
}

// handleLogin はユーザー名とパスワードを検証してアクセストークンを発行するハンドラを返す。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusUnprocessableEntity, fmt.Sprintf("Invalid request body: %v", err))
			return
		}

		user, err := s.store.GetUserByUsername(c.Request.Context(), req.Username)
		if err != nil && !errors.Is(err, ErrUserNotFound) {
			respondError(c, http.StatusInternalServerError, "Failed to login")
			log.Printf("ユーザー取得エラー: %v", err)
			return
		}
		if err != nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			log.Printf("ログインに失敗しました: username=%s", req.Username)
			respondError(c, http.StatusUnauthorized, "Invalid username or password")
			return
		}

		token, err := middleware.GenerateJWT(s.jwtSecret, user.Username, s.tokenTTL)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to login")
			log.Printf("JWT生成エラー: %v", err)
			return
		}

		log.Printf("ログインしました: username=%s", user.Username)
		c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
	}
}

// handleMe はログイン確認用のメッセージを返すハンドラを返す。
// トークンの検証は行わない。
func (s *Server) handleMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "You are logged in"})
	}
}

// handleProtected は認証済みユーザーに挨拶を返すハンドラを返す。
func (s *Server) handleProtected() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := middleware.GetUsername(c)
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Hello %s, you have access to this protected endpoint.", username),
		})
	}
}
