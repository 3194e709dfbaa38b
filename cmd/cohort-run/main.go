// cmd/cohort-run/main.go
package main

import (
	"cohort/internal/appshell"
	"cohort/internal/runapp"
)

func main() {
	appshell.Main(runapp.RunContext)
}
