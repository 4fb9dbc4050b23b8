package api

import "time"

// Book は書籍のレスポンス。
type Book struct {
	// ID は書籍の一意識別子。
	ID int64 `json:"id"`
	// Title は書籍のタイトル。
	Title string `json:"title"`
	// Author は著者名。
	Author string `json:"author"`
	// PublishedYear は出版年。未設定の場合はnil。
	PublishedYear *int `json:"published_year"`
	// Genre はジャンル。未設定の場合はnil。
	Genre *string `json:"genre"`
	// CreatedAt は作成日時。
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt は更新日時。
	UpdatedAt time.Time `json:"updated_at"`
}

// BookPage は書籍一覧のレスポンス。
type BookPage struct {
	// Data は取得した書籍。
	Data []Book `json:"data"`
	// Total は書籍の総数。
	Total int `json:"total"`
}

// BookCreateRequest は書籍作成リクエスト。
type BookCreateRequest struct {
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	PublishedYear *int    `json:"published_year,omitempty"`
	Genre         *string `json:"genre,omitempty"`
}

// BookUpdateRequest は書籍更新リクエスト。
// nilのフィールドは送信されず、バックエンド側で変更されない。
type BookUpdateRequest struct {
	Title         *string `json:"title,omitempty"`
	Author        *string `json:"author,omitempty"`
	PublishedYear *int    `json:"published_year,omitempty"`
	Genre         *string `json:"genre,omitempty"`
}

// Credentials はログイン・登録リクエスト。
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse はログインのレスポンス。
type TokenResponse struct {
	// AccessToken は発行されたアクセストークン。
	AccessToken string `json:"access_token"`
	// TokenType はトークン種別（"bearer"）。
	TokenType string `json:"token_type"`
}

// User は登録されたユーザー。
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile は /me のレスポンス。
type Profile struct {
	Message string `json:"message"`
}

// MessageResponse はメッセージのみのレスポンス。
type MessageResponse struct {
	Message string `json:"message"`
}
