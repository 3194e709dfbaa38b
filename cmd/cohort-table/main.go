// cmd/cohort-table/main.go
package main

import (
	"cohort/internal/appshell"
	"cohort/internal/tableapp"
)

func main() {
	appshell.Main(tableapp.RunContext)
}
