// cmd/cohort-match/main.go
package main

import (
	"cohort/internal/appshell"
	"cohort/internal/matchapp"
)

func main() {
	appshell.Main(matchapp.RunContext)
}
