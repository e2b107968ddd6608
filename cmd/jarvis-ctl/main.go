package main

import (
	"fmt"
	"os"

	cli "github.com/spf13/pflag"

	"jarvis/internal/ipc"
)

func main() {
	socket := cli.StringP("socket", "s", ipc.SocketPath, "Daemon control socket")
	cli.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: jarvis-ctl [--socket path] trigger|quit")
		cli.PrintDefaults()
	}
	cli.Parse()

	cmd := ipc.CmdTrigger
	if cli.NArg() > 0 {
		cmd = cli.Arg(0)
	}
	if cmd != ipc.CmdTrigger && cmd != ipc.CmdQuit {
		cli.Usage()
		os.Exit(2)
	}

	if err := ipc.Send(*socket, cmd); err != nil {
		fmt.Println("jarvis not running:", err)
		os.Exit(1)
	}
}
