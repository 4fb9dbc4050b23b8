// 書籍管理APIサービスのエントリポイント。
// 書籍のCRUDとユーザー登録・ログインによるJWT発行を担当する。
package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/bookmanager/internal/bookapi"
	"github.com/nao1215/bookmanager/internal/config"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("ログファイルのオープンに失敗: %v", err)
		}
		defer f.Close()
		w := io.MultiWriter(os.Stderr, f)
		log.SetOutput(w)
		gin.DefaultWriter = io.MultiWriter(os.Stdout, f)
		gin.DefaultErrorWriter = w
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := bookapi.NewServer(ctx, cfg)
	if err != nil {
		log.Fatalf("書籍APIサーバーの初期化に失敗: %v", err)
	}
	defer server.Close()

	log.Printf("書籍APIサービスを起動します: :%s (db=%s)", cfg.Port, cfg.DBPath)
	if err := server.Run(ctx); err != nil {
		log.Fatalf("書籍APIサービスの起動に失敗: %v", err)
	}
}
