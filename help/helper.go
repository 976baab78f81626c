package help

import (
	"fmt"
	"os"
	"os/user"
)

// ShortErr trims an error to n runes for one-line display.
func ShortErr(err error, n int) string {
	if err == nil {
		return ""
	}
	r := []rune(fmt.Sprint(err))
	if n > 1 && len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return string(r)
}

// HomeDir is used for the default kubeconfig path.
func HomeDir() string {
	if h, err := os.UserHomeDir(); err == nil && h != "" {
		return h
	}
	if u, err := user.Current(); err == nil {
		return u.HomeDir
	}
	return "."
}
