package bookapi

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// 一覧取得のデフォルトのページング値。
const (
	defaultSkip  = 0
	defaultLimit = 10
)

// createBookRequest は書籍作成リクエストのボディ。
type createBookRequest struct {
	Title         string  `json:"title" binding:"required"`
	Author        string  `json:"author" binding:"required"`
	PublishedYear *int    `json:"published_year"`
	Genre         *string `json:"genre"`
}

// updateBookRequest は書籍更新リクエストのボディ。
// 省略されたフィールドは変更しない。
type updateBookRequest struct {
	Title         *string `json:"title"`
	Author        *string `json:"author"`
	PublishedYear *int    `json:"published_year"`
	Genre         *string `json:"genre"`
}

// bookResponse は書籍のAPIレスポンス。
type bookResponse struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	PublishedYear *int      `json:"published_year"`
	Genre         *string   `json:"genre"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// bookPageResponse は書籍一覧のAPIレスポンス。
type bookPageResponse struct {
	Data  []bookResponse `json:"data"`
	Total int            `json:"total"`
}

// toBookResponse はDBの書籍をAPIレスポンスに変換する。
func toBookResponse(b Book) bookResponse {
	return bookResponse{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		PublishedYear: b.PublishedYear,
		Genre:         b.Genre,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

// handleListBooks はskip/limitでページングした書籍一覧を返すハンドラを返す。
func (s *Server) handleListBooks() gin.HandlerFunc {
	return func(c *gin.Context) {
		skip, err := queryInt(c, "skip", defaultSkip)
		if err != nil {
			respondError(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		limit, err := queryInt(c, "limit", defaultLimit)
		if err != nil {
			respondError(c, http.StatusUnprocessableEntity, err.Error())
			return
		}

		books, total, err := s.store.ListBooks(c.Request.Context(), skip, limit)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to list books")
			log.Printf("書籍一覧取得エラー: %v", err)
			return
		}

		resp := bookPageResponse{Data: make([]bookResponse, 0, len(books)), Total: total}
		for _, b := range books {
			resp.Data = append(resp.Data, toBookResponse(b))
		}
		c.JSON(http.StatusOK, resp)
	}
}

// handleGetBook は指定IDの書籍を返すハンドラを返す。
func (s *Server) handleGetBook() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := bookIDParam(c)
		if !ok {
			return
		}

		b, err := s.store.GetBook(c.Request.Context(), id)
		if errors.Is(err, ErrBookNotFound) {
			respondError(c, http.StatusNotFound, "Book not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to get book")
			log.Printf("書籍取得エラー: %v", err)
			return
		}
		c.JSON(http.StatusOK, toBookResponse(b))
	}
}

// handleCreateBook は書籍を登録するハンドラを返す。
func (s *Server) handleCreateBook() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createBookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusUnprocessableEntity, fmt.Sprintf("Invalid request body: %v", err))
			return
		}

		b := Book{
			Title:         s.sanitizeText(req.Title),
			Author:        s.sanitizeText(req.Author),
			PublishedYear: req.PublishedYear,
			Genre:         s.sanitizeOptional(req.Genre),
		}
		if b.Title == "" || b.Author == "" {
			respondError(c, http.StatusUnprocessableEntity, "title and author must not be empty")
			return
		}

		created, err := s.store.CreateBook(c.Request.Context(), b)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to create book")
			log.Printf("書籍登録エラー: %v", err)
			return
		}

		log.Printf("書籍を登録しました: id=%d", created.ID)
		c.JSON(http.StatusOK, toBookResponse(created))
	}
}

// handleUpdateBook は書籍を部分更新するハンドラを返す。
func (s *Server) handleUpdateBook() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := bookIDParam(c)
		if !ok {
			return
		}

		var req updateBookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusUnprocessableEntity, fmt.Sprintf("Invalid request body: %v", err))
			return
		}

		patch := BookPatch{
			Title:         s.sanitizeOptional(req.Title),
			Author:        s.sanitizeOptional(req.Author),
			PublishedYear: req.PublishedYear,
			Genre:         s.sanitizeOptional(req.Genre),
		}
		if (req.Title != nil && patch.Title == nil) || (req.Author != nil && patch.Author == nil) {
			respondError(c, http.StatusUnprocessableEntity, "title and author must not be empty")
			return
		}

		updated, err := s.store.UpdateBook(c.Request.Context(), id, patch)
		if errors.Is(err, ErrBookNotFound) {
			respondError(c, http.StatusNotFound, "Book not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to update book")
			log.Printf("書籍更新エラー: %v", err)
			return
		}

		log.Printf("書籍を更新しました: id=%d", updated.ID)
		c.JSON(http.StatusOK, toBookResponse(updated))
	}
}

// handleDeleteBook は書籍を削除するハンドラを返す。
func (s *Server) handleDeleteBook() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := bookIDParam(c)
		if !ok {
			return
		}

		err := s.store.DeleteBook(c.Request.Context(), id)
		if errors.Is(err, ErrBookNotFound) {
			respondError(c, http.StatusNotFound, "Book not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to delete book")
			log.Printf("書籍削除エラー: %v", err)
			return
		}

		log.Printf("書籍を削除しました: id=%d", id)
		c.JSON(http.StatusOK, gin.H{"message": "Book deleted"})
	}
}

// sanitizeOptional は任意項目を無害化する。空になった場合はnilを返す。
func (s *Server) sanitizeOptional(v *string) *string {
	if v == nil {
		return nil
	}
	cleaned := s.sanitizeText(*v)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

// bookIDParam はパスパラメータの書籍IDを解析する。
// 不正な場合は422を返してfalseを返す。
func bookIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "book id must be an integer")
		return 0, false
	}
	return id, true
}

// queryInt はクエリパラメータを0以上の整数として解析する。未指定の場合はdefを返す。
func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return v, nil
}
