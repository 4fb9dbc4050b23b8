package bookapi

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrBookNotFound は指定IDの書籍が存在しない場合のエラー。
	ErrBookNotFound = errors.New("書籍が見つかりません")
	// ErrUserNotFound は指定ユーザー名のユーザーが存在しない場合のエラー。
	ErrUserNotFound = errors.New("ユーザーが見つかりません")
	// ErrUsernameTaken はユーザー名が既に登録されている場合のエラー。
	ErrUsernameTaken = errors.New("ユーザー名は既に使用されています")
)

// timeLayout はDBに保存する日時の書式。
const timeLayout = time.RFC3339Nano

// Book はbooksテーブルの1行を表す。
type Book struct {
	ID            int64
	Title         string
	Author        string
	PublishedYear *int
	Genre         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BookPatch は書籍の部分更新内容。nilのフィールドは変更しない。
type BookPatch struct {
	Title         *string
	Author        *string
	PublishedYear *int
	Genre         *string
}

// empty は更新対象のフィールドが1つもないかを返す。
func (p BookPatch) empty() bool {
	return p.Title == nil && p.Author == nil && p.PublishedYear == nil && p.Genre == nil
}

// User はusersテーブルの1行を表す。
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Store は書籍とユーザーをSQLiteに永続化する。
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore は新しいStoreを生成する。
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// bookColumns はbooksテーブルのSELECT対象カラム。
const bookColumns = "id, title, author, published_year, genre, created_at, updated_at"

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanBook は1行分の書籍を読み取る。
func scanBook(row rowScanner) (Book, error) {
	var (
		b                    Book
		year                 sql.NullInt64
		genre                sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &year, &genre, &createdAt, &updatedAt); err != nil {
		return Book{}, err
	}
	if year.Valid {
		y := int(year.Int64)
		b.PublishedYear = &y
	}
	if genre.Valid {
		g := genre.String
		b.Genre = &g
	}

	var err error
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return Book{}, fmt.Errorf("created_atの解析に失敗: %w", err)
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return Book{}, fmt.Errorf("updated_atの解析に失敗: %w", err)
	}
	return b, nil
}

// CreateBook は書籍を登録し、登録後の行を返す。
func (s *Store) CreateBook(ctx context.Context, b Book) (Book, error) {
	now := s.now().Format(timeLayout)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO books (title, author, published_year, genre, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		b.Title, b.Author, nullInt(b.PublishedYear), nullString(b.Genre), now, now,
	)
	if err != nil {
		return Book{}, fmt.Errorf("書籍の登録に失敗: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Book{}, fmt.Errorf("書籍IDの取得に失敗: %w", err)
	}
	return s.GetBook(ctx, id)
}

// GetBook は指定IDの書籍を返す。存在しない場合はErrBookNotFoundを返す。
func (s *Store) GetBook(ctx context.Context, id int64) (Book, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Book{}, ErrBookNotFound
	}
	if err != nil {
		return Book{}, fmt.Errorf("書籍の取得に失敗: id=%d: %w", id, err)
	}
	return b, nil
}

// ListBooks はID順にskip件を読み飛ばしてlimit件の書籍と総件数を返す。
func (s *Store) ListBooks(ctx context.Context, skip, limit int) ([]Book, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("書籍件数の取得に失敗: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books ORDER BY id LIMIT ? OFFSET ?`, limit, skip)
	if err != nil {
		return nil, 0, fmt.Errorf("書籍一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	books := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("書籍の読み取りに失敗: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("書籍一覧の走査に失敗: %w", err)
	}
	return books, total, nil
}

// UpdateBook は指定されたフィールドのみを更新し、更新後の行を返す。
func (s *Store) UpdateBook(ctx context.Context, id int64, patch BookPatch) (Book, error) {
	if _, err := s.GetBook(ctx, id); err != nil {
		return Book{}, err
	}
	if patch.empty() {
		return s.GetBook(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Author != nil {
		sets = append(sets, "author = ?")
		args = append(args, *patch.Author)
	}
	if patch.PublishedYear != nil {
		sets = append(sets, "published_year = ?")
		args = append(args, *patch.PublishedYear)
	}
	if patch.Genre != nil {
		sets = append(sets, "genre = ?")
		args = append(args, *patch.Genre)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, s.now().Format(timeLayout), id)

	query := `UPDATE books SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return Book{}, fmt.Errorf("書籍の更新に失敗: id=%d: %w", id, err)
	}
	return s.GetBook(ctx, id)
}

// DeleteBook は指定IDの書籍を削除する。存在しない場合はErrBookNotFoundを返す。
func (s *Store) DeleteBook(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("書籍の削除に失敗: id=%d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除件数の取得に失敗: %w", err)
	}
	if n == 0 {
		return ErrBookNotFound
	}
	return nil
}

// CreateUser はユーザーを登録する。ユーザー名が重複する場合はErrUsernameTakenを返す。
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (User, error) {
	now := s.now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password, created_at) VALUES (?, ?, ?)`,
		username, passwordHash, now.Format(timeLayout),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return User{}, ErrUsernameTaken
		}
		return User{}, fmt.Errorf("ユーザーの登録に失敗: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("ユーザーIDの取得に失敗: %w", err)
	}
	return User{ID: id, Username: username, PasswordHash: passwordHash, CreatedAt: now}, nil
}

// GetUserByUsername はユーザー名でユーザーを検索する。存在しない場合はErrUserNotFoundを返す。
func (s *Store) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var (
		u         User
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password, created_at FROM users WHERE username = ?`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return User{}, fmt.Errorf("created_atの解析に失敗: %w", err)
	}
	return u, nil
}

// parseTime はSQLiteに保存された日時文字列を解析する。
// datetime('now') で書き込まれた値も読めるよう複数の書式を試す。
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("日時の書式を認識できません: %s", s)
}

// nullInt はnilをNULLとして扱うDB引数に変換する。
func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

// nullString はnilをNULLとして扱うDB引数に変換する。
func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
