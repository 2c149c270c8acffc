package main

import "github.com/shaharia-lab/matchday-notifier/cmd"

func main() {
	cmd.Execute()
}
