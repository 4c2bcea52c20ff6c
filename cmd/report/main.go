// Command report imprime no terminal as visões do painel de atendimentos a partir de um CSV
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		var ece *exitCodeError
		if errors.As(err, &ece) {
			if ece.msg != "" {
				fmt.Fprintln(os.Stderr, ece.msg)
			}
			os.Exit(ece.code)
		}
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(ExitInvalidArgs)
	}
}
