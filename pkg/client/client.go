package client

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/Wa4h1h/go-tftp-client/pkg/utils"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Connector interface {
	Connect(addr string) error
	Get(filename string) error
	Put(filename string) error
	SetTimeout(timeout uint)
	SetTrace()
	Close() error
}

// Client keeps a server address between transfers and maps remote files onto
// a local directory. Every transfer runs on its own freshly bound socket, so
// each one gets a new transfer id.
type Client struct {
	server    net.Addr
	l         *zap.SugaredLogger
	localAddr string
	dir       string
	timeout   time.Duration
	numTries  int
	trace     bool
	netascii  bool
}

func NewClient(l *zap.SugaredLogger, numTries uint, dir string) *Client {
	return &Client{
		l:         l,
		numTries:  max(int(numTries), 1),
		dir:       dir,
		localAddr: ":0",
	}
}

func (c *Client) SetTimeout(timeout uint) {
	c.timeout = time.Duration(timeout) * time.Second
}

// SetTrace toggles per-block logging.
func (c *Client) SetTrace() {
	c.trace = !c.trace
}

func (c *Client) SetNetASCII(netascii bool) {
	c.netascii = netascii
}

// SetLocalAddr sets the address transfer sockets are bound to.
func (c *Client) SetLocalAddr(addr string) {
	c.localAddr = addr
}

// Connect resolves the server address. Nothing is bound or sent.
func (c *Client) Connect(addr string) error {
	server, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return fmt.Errorf("error while resolving %s: %w", addr, err)
	}

	c.server = server
	c.l.Debugf("using server %s", server)

	return nil
}

// transfer binds a socket, runs fn on a Transfer over it and closes the
// socket. Datagrams still in flight for an earlier transfer never reach a
// later one.
func (c *Client) transfer(fn func(t *Transfer) error) (err error) {
	conn, err := ListenTransport(context.Background(), c.localAddr)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := conn.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("error while closing connection: %w", cerr))
		}
	}()

	c.l.Debugf("transfer with %s from %s", c.server, conn.LocalAddr())

	return fn(NewTransfer(conn, c.server,
		WithLogger(c.l),
		WithTimeout(c.timeout),
		WithNumTries(c.numTries),
		WithTrace(c.trace),
		WithNetASCII(c.netascii),
	))
}

// Get downloads filename and stores it under the client directory.
func (c *Client) Get(filename string) error {
	if c.server == nil {
		return utils.ErrNotConnected
	}

	var data []byte

	err := c.transfer(func(t *Transfer) error {
		var err error
		data, err = t.Get(filename)

		return err
	})
	if err != nil {
		return fmt.Errorf("error while getting %s: %w", filename, err)
	}

	local := filepath.Join(c.dir, filepath.Base(filename))
	if err := writeFile(local, data); err != nil {
		return err
	}

	c.l.Infof("received %s, %d bytes", local, len(data))

	return nil
}

// Put uploads a file from the client directory, or from filename itself when
// it is absolute, under its base name.
func (c *Client) Put(filename string) error {
	if c.server == nil {
		return utils.ErrNotConnected
	}

	local := filename
	if !filepath.IsAbs(local) {
		local = filepath.Join(c.dir, filename)
	}

	data, err := os.ReadFile(local)
	if err != nil {
		return fmt.Errorf("error while reading %s: %w", local, err)
	}

	err = c.transfer(func(t *Transfer) error {
		return t.Put(filepath.Base(filename), data)
	})
	if err != nil {
		return fmt.Errorf("error while putting %s: %w", filename, err)
	}

	c.l.Infof("sent %s, %d bytes", local, len(data))

	return nil
}

// Close forgets the server. Sockets only live as long as a transfer.
func (c *Client) Close() error {
	c.server = nil

	return nil
}

func writeFile(name string, data []byte) (err error) {
	f, err := os.OpenFile(name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("error while opening file: %w", err)
	}

	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("error while writing file: %w", err)
	}

	return nil
}
