// cmd/cohort-label/main.go
package main

import (
	"cohort/internal/appshell"
	"cohort/internal/labelapp"
)

func main() {
	appshell.Main(labelapp.RunContext)
}
