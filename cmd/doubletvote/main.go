// cmd/doubletvote/main.go
package main

import (
	"doubletvote/internal/app"
	"doubletvote/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
