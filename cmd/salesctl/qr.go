package main

import (
	"fmt"

	"github.com/ebosoh/sales-agent/internal/browser"
)

func printQR(code string) {
	art, err := browser.RenderQR(code)
	if err != nil {
		fmt.Printf("(cannot render QR: %v)\n", err)
		return
	}
	fmt.Print(art)
}
