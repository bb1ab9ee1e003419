// Package espnow provides a connectionless, best-effort link between hub and
// panel nodes: 6-byte link addresses, fire-and-forget sends with an
// asynchronous per-send completion, and a receive callback. Datagrams ride
// on UDP; the link adds no retries, ordering or delivery guarantees.
package espnow

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// AddrSize is the length of a link-layer address.
const AddrSize = 6

// Addr is a 6-byte link-layer peer identifier.
type Addr [AddrSize]byte

// Broadcast addresses every registered peer.
var Broadcast = Addr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

func (a Addr) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", a[0], a[1], a[2], a[3], a[4], a[5])
}

// ParseAddr parses "aa:bb:cc:dd:ee:ff".
func ParseAddr(s string) (Addr, error) {
	var a Addr
	parts := strings.Split(s, ":")
	if len(parts) != AddrSize {
		return a, errors.Errorf("invalid link address %q", s)
	}
	for i, p := range parts {
		if len(p) != 2 {
			return a, errors.Errorf("invalid link address %q", s)
		}
		b, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return a, errors.Errorf("invalid link address %q", s)
		}
		a[i] = byte(b)
	}
	return a, nil
}

// ReceiveFunc is invoked once per inbound datagram, on the link's read
// goroutine. It must return promptly.
type ReceiveFunc func(payload []byte, from Addr)

type PeerConfig struct {
	Addr     string
	Endpoint string
}

type Config struct {
	Self   string
	Listen string
	Peers  []PeerConfig
}

type outbound struct {
	payload []byte
	to      *net.UDPAddr
}

// Link is a best-effort datagram link. Register peers before Start; the
// registry is immutable afterwards. The socket is swapped atomically so the
// retry loop can reopen it while sends are in flight.
type Link struct {
	config *Config

	self      Addr
	conn      atomic.Pointer[net.UDPConn]
	peers     map[Addr]*net.UDPAddr
	order     []Addr
	onReceive ReceiveFunc
}

// to allow testing
var listenUDP = func(addr *net.UDPAddr) (*net.UDPConn, error) {
	return net.ListenUDP("udp", addr)
}

// NewLink loads the link configuration from a file next to the binary, in
// the same manner the other node configs are found.
func NewLink(fileName string) (*Link, error) {
	dir, err := filepath.Abs(filepath.Dir(os.Args[0]))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to determine binary location")
	}
	file, err := os.Open(filepath.Join(dir, fileName))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open file %s", fileName)
	}
	defer file.Close()
	return NewLinkFromReader(file)
}

func NewLinkFromReader(configReader io.Reader) (*Link, error) {
	configData, err := io.ReadAll(configReader)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read config reader")
	}
	config := Config{}
	if _, err := toml.Decode(string(configData), &config); err != nil {
		return nil, errors.Wrap(err, "unable to load link configuration")
	}
	self, err := ParseAddr(config.Self)
	if err != nil {
		return nil, err
	}
	l := &Link{
		config: &config,
		self:   self,
		peers:  make(map[Addr]*net.UDPAddr),
	}
	for _, p := range config.Peers {
		addr, err := ParseAddr(p.Addr)
		if err != nil {
			return nil, err
		}
		ep, err := net.ResolveUDPAddr("udp", p.Endpoint)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to resolve peer endpoint %s", p.Endpoint)
		}
		l.Register(addr, ep)
	}
	return l, nil
}

// Register adds a peer to the registry. Startup only, not safe once the
// link is started.
func (l *Link) Register(addr Addr, endpoint *net.UDPAddr) {
	if _, ok := l.peers[addr]; !ok {
		l.order = append(l.order, addr)
	}
	l.peers[addr] = endpoint
}

// Peers returns the registered peer addresses in registration order.
func (l *Link) Peers() []Addr {
	peers := make([]Addr, len(l.order))
	copy(peers, l.order)
	return peers
}

// Self returns this node's link address.
func (l *Link) Self() Addr {
	return l.self
}

// LocalAddr returns the bound UDP address, or nil while the link is closed.
func (l *Link) LocalAddr() *net.UDPAddr {
	conn := l.conn.Load()
	if conn == nil {
		return nil
	}
	return conn.LocalAddr().(*net.UDPAddr)
}

// OnReceive sets the inbound datagram callback. Must be called before Start.
func (l *Link) OnReceive(fn ReceiveFunc) {
	l.onReceive = fn
}

// Open binds the listening socket.
func (l *Link) Open() error {
	listen, err := net.ResolveUDPAddr("udp", l.config.Listen)
	if err != nil {
		return errors.Wrapf(err, "unable to resolve listen address %s", l.config.Listen)
	}
	conn, err := listenUDP(listen)
	if err != nil {
		return errors.Wrapf(err, "unable to listen on %s", l.config.Listen)
	}
	l.conn.Store(conn)
	log.WithField("listen", conn.LocalAddr()).WithField("self", l.self).Info("link opened")
	return nil
}

func (l *Link) Close() error {
	conn := l.conn.Swap(nil)
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (l *Link) Name() string {
	return "espnow-link"
}

// Send transmits a payload to one peer, or to every registered peer when
// addr is Broadcast. done is invoked exactly once per issued datagram, from
// a sender goroutine. A non-nil return means no datagram was issued and done
// will not be called.
func (l *Link) Send(addr Addr, payload []byte, done func(error)) error {
	conn := l.conn.Load()
	if conn == nil {
		return errors.New("link is not open")
	}
	var targets []*net.UDPAddr
	if addr == Broadcast {
		for _, a := range l.order {
			targets = append(targets, l.peers[a])
		}
	} else {
		ep, ok := l.peers[addr]
		if !ok {
			return errors.Errorf("peer %s not registered", addr)
		}
		targets = []*net.UDPAddr{ep}
	}

	datagram := make([]byte, AddrSize+len(payload))
	copy(datagram[:AddrSize], l.self[:])
	copy(datagram[AddrSize:], payload)

	for _, ep := range targets {
		out := outbound{payload: datagram, to: ep}
		// each send is independent; one peer failing must not delay another
		go func(out outbound) {
			_, err := conn.WriteToUDP(out.payload, out.to)
			if done != nil {
				done(err)
			}
		}(out)
	}
	return nil
}

// Start runs the read loop until the context is cancelled or the socket
// fails. Inbound datagrams shorter than the address header are discarded.
func (l *Link) Start(ctx context.Context) error {
	conn := l.conn.Load()
	if conn == nil {
		return errors.New("link is not open")
	}

	go func() {
		<-ctx.Done()
		log.Infof("stopping link: %v", ctx.Err())
		if err := conn.Close(); err != nil {
			log.WithField("err", err).Warn("unable to close link socket after context")
		}
	}()

	buf := make([]byte, 1500)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			return errors.Wrap(err, "link read failed")
		}
		if n < AddrSize {
			log.WithField("length", n).Debug("discarding runt datagram")
			continue
		}
		var from Addr
		copy(from[:], buf[:AddrSize])
		if l.onReceive == nil {
			continue
		}
		payload := make([]byte, n-AddrSize)
		copy(payload, buf[AddrSize:n])
		l.onReceive(payload, from)
	}
}
