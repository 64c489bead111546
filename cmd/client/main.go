package main

import (
	"fmt"
	"os"

	"github.com/Wa4h1h/go-tftp-client/pkg/client"
	"github.com/Wa4h1h/go-tftp-client/pkg/utils"
)

var (
	server    = utils.GetEnv[string]("TFTP_SERVER", "127.0.0.1:69", false)
	localAddr = utils.GetEnv[string]("TFTP_LOCAL_ADDR", ":0", false)
	logLevel  = utils.GetEnv[string]("TFTP_LOG_LEVEL", "info", false)
	timeout   = utils.GetEnv[uint]("TFTP_TIMEOUT", "0", false)
	numTries  = utils.GetEnv[uint]("TFTP_NUM_TRIES", "1", false)
	netascii  = utils.GetEnv[bool]("TFTP_NETASCII", "false", false)
	tftpDir   = utils.GetEnv[string]("TFTP_DIR", utils.DefaultDir(), false)
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes a single "get <file>" or "put <file>" when given as arguments
// and starts the interactive prompt otherwise.
func run(args []string) int {
	l := utils.NewLogger(logLevel).Sugar()

	defer func() {
		_ = l.Sync()
	}()

	dir, err := utils.EnsureDir(tftpDir)
	if err != nil {
		l.Error(err)

		return 1
	}

	c := client.NewClient(l, numTries, dir)
	c.SetLocalAddr(localAddr)
	c.SetTimeout(timeout)
	c.SetNetASCII(netascii)

	if err := c.Connect(server); err != nil {
		l.Error(err)

		return 1
	}

	defer func(c client.Connector) {
		if err := c.Close(); err != nil {
			l.Error(err.Error())
		}
	}(c)

	if len(args) == 2 {
		switch args[0] {
		case "get":
			err = c.Get(args[1])
		case "put":
			err = c.Put(args[1])
		default:
			err = fmt.Errorf("unknown command: %s", args[0])
		}

		if err != nil {
			l.Error(err)

			return 1
		}

		return 0
	}

	if err := client.NewCli(l, c, os.Stdin, os.Stdout).Read(); err != nil {
		l.Error(err)

		return 1
	}

	return 0
}
