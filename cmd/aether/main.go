// aetherは個人向け家計簿サービスのエントリーポイント。
// サブコマンド（serve/worker/migrate/healthcheck）で起動モードを切り替える。
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/aether/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "aether: %v\n", err)
		os.Exit(1)
	}
}
