package main

import "github.com/timursak/alarm-clock/cmd/alarm-clock-server/cmd"

func main() {
	cmd.Execute()
}
