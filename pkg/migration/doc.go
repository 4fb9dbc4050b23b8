// Package migration はSQLiteデータベースのスキーママイグレーションを管理する。
//
// embed.FSなどのfs.FSから "000001_description.up.sql" 形式のファイルを読み込み、
// schema_migrations テーブルで適用状態を追跡する。
// 書籍APIのデータベースとクライアントのローカルストレージの両方で使用する。
package migration
