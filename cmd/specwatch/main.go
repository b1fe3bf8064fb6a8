// specwatch regenerates API clients whenever a backend's OpenAPI document
// changes.
package main

import (
	"os"

	"github.com/variantexplain/specwatch/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
