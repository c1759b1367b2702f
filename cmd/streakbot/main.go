// Command streakbot scores daily GroupMe check-ins and posts a streak
// leaderboard.
package main

import (
	"os"
	_ "time/tzdata"

	"github.com/roach88/streakbot/internal/cli"
)

func main() {
	os.Exit(cli.GetExitCode(cli.NewRootCommand().Execute()))
}
