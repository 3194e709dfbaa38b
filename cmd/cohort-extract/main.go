// cmd/cohort-extract/main.go
package main

import (
	"cohort/internal/appshell"
	"cohort/internal/extractapp"
)

func main() {
	appshell.Main(extractapp.RunContext)
}
