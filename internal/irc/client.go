// Package irc adapts a gopkg.in/irc.v4 connection to the event and
// command surfaces the rest of the bot works with: protocol messages in,
// bus events out.
package irc

import (
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	irc "gopkg.in/irc.v4"

	"github.com/mirrorlake/geobot/internal/bus"
	"github.com/mirrorlake/geobot/internal/config"
)

const dialTimeout = 30 * time.Second

// Client is one live IRC connection. Inbound protocol messages are
// translated into bus events and buffered until the session loop drains
// them; outbound commands go straight to the wire.
type Client struct {
	client *irc.Client
	conn   net.Conn
	buf    *bus.Buffer

	mu   sync.Mutex
	dead bool
}

// Dial connects to the configured server and starts the read loop.
func Dial(cfg config.ServerConfig) (*Client, error) {
	addr := net.JoinHostPort(cfg.Address, strconv.Itoa(cfg.Port))
	dialer := net.Dialer{Timeout: dialTimeout}

	var conn net.Conn
	var err error
	if cfg.TLS {
		conn, err = tls.DialWithDialer(&dialer, "tcp", addr, nil)
	} else {
		conn, err = dialer.Dial("tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	c := &Client{
		conn: conn,
		buf:  bus.NewBuffer(config.DefaultBufSize),
	}
	c.client = irc.NewClient(conn, irc.ClientConfig{
		Nick:    cfg.Nick,
		User:    cfg.Username,
		Name:    cfg.Realname,
		Handler: irc.HandlerFunc(c.handle),
	})

	go c.run()
	return c, nil
}

func (c *Client) run() {
	err := c.client.Run()
	c.mu.Lock()
	c.dead = true
	c.mu.Unlock()
	c.buf.Publish(bus.Dead{Err: err})
}

// handle runs on the library's read goroutine; it only translates and
// buffers, all real work happens on the session loop.
func (c *Client) handle(_ *irc.Client, m *irc.Message) {
	if ev := translate(m); ev != nil {
		c.buf.Publish(ev)
	}
}

// translate maps one protocol message to a bus event, or nil for
// messages the bot does not care about.
func translate(m *irc.Message) bus.Event {
	switch m.Command {
	case "001":
		return bus.Welcome{}
	case "JOIN":
		if len(m.Params) < 1 || m.Prefix == nil {
			return nil
		}
		return bus.Joined{Room: m.Params[0], Nick: m.Prefix.Name}
	case "PART":
		if len(m.Params) < 1 || m.Prefix == nil {
			return nil
		}
		return bus.Parted{Room: m.Params[0], Nick: m.Prefix.Name}
	case "PRIVMSG":
		if len(m.Params) < 2 || m.Prefix == nil {
			return nil
		}
		// Only room messages; direct messages have no roster context.
		if !strings.HasPrefix(m.Params[0], "#") && !strings.HasPrefix(m.Params[0], "&") {
			return nil
		}
		return bus.Message{Sender: m.Prefix.Name, Room: m.Params[0], Text: m.Trailing()}
	case "353": // RPL_NAMREPLY: <me> <symbol> <room> :nick nick ...
		if len(m.Params) < 4 {
			return nil
		}
		return bus.NamesReply{Room: m.Params[2], Nicks: strings.Fields(m.Params[3])}
	case "311": // RPL_WHOISUSER: <me> <nick> <user> <host> * :realname
		if len(m.Params) < 4 {
			return nil
		}
		return bus.WhoisUser{Nick: m.Params[1], Host: m.Params[3]}
	case "401": // ERR_NOSUCHNICK: <me> <nick> :No such nick
		if len(m.Params) < 2 {
			return nil
		}
		return bus.NoSuchNick{Nick: m.Params[1]}
	}
	return nil
}

func (c *Client) SendMessage(room, text string) error {
	return c.client.WriteMessage(&irc.Message{
		Command: "PRIVMSG",
		Params:  []string{room, text},
	})
}

func (c *Client) Whois(nick string) error {
	return c.client.WriteMessage(&irc.Message{
		Command: "WHOIS",
		Params:  []string{nick},
	})
}

func (c *Client) Join(room string) error {
	return c.client.WriteMessage(&irc.Message{
		Command: "JOIN",
		Params:  []string{room},
	})
}

// Nick returns the nick currently in effect for this connection.
func (c *Client) Nick() string {
	return c.client.CurrentNick()
}

// Drain returns the buffered events since the last call.
func (c *Client) Drain() []bus.Event {
	return c.buf.Drain()
}

// Dead reports whether the connection's read loop has exited.
func (c *Client) Dead() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dead
}

func (c *Client) Close() error {
	return c.conn.Close()
}
