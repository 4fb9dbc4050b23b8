package localstorage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// スキーマ定義。
const schema = `
CREATE TABLE IF NOT EXISTS local_storage (
    -- 格納キー
    key TEXT PRIMARY KEY,
    -- 格納値
    value TEXT NOT NULL,
    -- 更新日時
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

var _ Storage = (*SQLite)(nil)

// SQLite はSQLiteファイルに値を保存するStorage実装。
type SQLite struct {
	// db はSQLiteデータベース接続。
	db *sql.DB
}

// OpenSQLite は指定パスのSQLiteファイルを開き、スキーマを適用する。
// 親ディレクトリが存在しない場合は作成する。":memory:" を指定するとインメモリで動作する。
func OpenSQLite(path string) (*SQLite, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("ストレージディレクトリの作成に失敗: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("ストレージの接続に失敗: %w", err)
	}
	// インメモリDBは接続ごとに別のDBになるため1接続に制限する
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}
	return &SQLite{db: db}, nil
}

// initSchema はSQLiteデータベースにスキーマを適用する。
func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	return nil
}

// GetItem はキーに対応する値を返す。
func (s *SQLite) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM local_storage WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, s.wrap(fmt.Errorf("値の取得に失敗: key=%s: %w", key, err))
	}
	return value, true, nil
}

// SetItem はキーに値を保存する。
func (s *SQLite) SetItem(ctx context.Context, key, value string) error {
	const query = `INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, datetime('now'))
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return s.wrap(fmt.Errorf("値の保存に失敗: key=%s: %w", key, err))
	}
	return nil
}

// RemoveItem はキーを削除する。
func (s *SQLite) RemoveItem(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM local_storage WHERE key = ?`, key); err != nil {
		return s.wrap(fmt.Errorf("値の削除に失敗: key=%s: %w", key, err))
	}
	return nil
}

// Close はデータベース接続を閉じる。
func (s *SQLite) Close() error {
	return s.db.Close()
}

// errDBClosed はdatabase/sqlがクローズ済みのDBに返すエラーの文言。
const errDBClosed = "sql: database is closed"

// wrap はクローズ済みDBに対するエラーをErrClosedに揃える。
func (s *SQLite) wrap(err error) error {
	if isClosedErr(err) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}
	return err
}

// isClosedErr はクローズ済みの接続やDBに起因するエラーかを判定する。
func isClosedErr(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), errDBClosed)
}
