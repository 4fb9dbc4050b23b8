// 書籍管理クライアントのエントリポイント。
// 認証トークンをローカルストレージに保存し、書籍管理APIを操作する。
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/nao1215/bookmanager/internal/client"
	"github.com/nao1215/bookmanager/internal/config"
	"github.com/nao1215/bookmanager/pkg/localstorage"
)

func main() {
	os.Exit(run())
}

// run はクライアントを実行し、終了コードを返す。
func run() int {
	log.SetFlags(0)
	log.SetPrefix("bookclient: ")

	cfg, err := config.LoadClient()
	if err != nil {
		log.Printf("設定の読み込みに失敗: %v", err)
		return 1
	}

	storage, err := localstorage.OpenSQLite(cfg.StoragePath)
	if err != nil {
		log.Printf("ローカルストレージのオープンに失敗: %v", err)
		return 1
	}
	defer storage.Close()

	app, err := client.NewApp(storage, cfg.APIURL, os.Stdout)
	if err != nil {
		log.Printf("クライアントの初期化に失敗: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := client.Run(ctx, app, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, client.DescribeError(err))
		if errors.Is(err, client.ErrUsage) {
			client.Usage(os.Stderr)
			return 2
		}
		return 1
	}
	return 0
}
