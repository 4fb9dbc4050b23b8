// Package client は書籍管理クライアントのアプリケーション層を提供する。
//
// App は起動時に一度だけ組み立てるナビゲーションコンテキストで、
// ルーター、クレデンシャルアクセサ、APIクライアントを保持する。
// コマンドと画面はAppを参照渡しで受け取り、グローバルな状態は持たない。
//
// 画面（HomeView, LoginView）はlipglossで端末に描画する。
// HomeViewは認証が必要なルート "/" に、LoginViewは "/login" に対応する。
package client
