package udp

import (
	"fmt"
	"io"
	"net"
	"strings"
	"sync/atomic"
)

type udpConn interface {
	io.Writer
	io.Closer
}

type (
	resolveFunc func(network, address string) (*net.UDPAddr, error)
	dialFunc    func(network string, laddr, raddr *net.UDPAddr) (udpConn, error)
)

// Relay forwards accepted sentences to a UDP destination, one datagram per
// sentence, the way chart plotters expect NMEA over UDP.
type Relay struct {
	dest string
	conn udpConn

	sent   atomic.Uint64
	failed atomic.Uint64
}

// Stats counts datagrams since the relay was created.
type Stats struct {
	Dest   string `json:"dest"`
	Sent   uint64 `json:"sent"`
	Failed uint64 `json:"failed"`
}

func NewRelay(dest string) (*Relay, error) {
	return newRelay(dest, net.ResolveUDPAddr, func(network string, laddr, raddr *net.UDPAddr) (udpConn, error) {
		// DialUDP selects a suitable local address automatically.
		return net.DialUDP(network, laddr, raddr)
	})
}

func newRelay(dest string, resolve resolveFunc, dial dialFunc) (*Relay, error) {
	addr, err := resolve("udp", dest)
	if err != nil {
		return nil, fmt.Errorf("resolve dest: %w", err)
	}
	conn, err := dial("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("dial udp: %w", err)
	}
	return &Relay{dest: dest, conn: conn}, nil
}

// SendLine writes line terminated by CRLF. Blank lines are dropped.
func (r *Relay) SendLine(line string) error {
	line = strings.TrimRight(line, "\r\n \t")
	if line == "" {
		return nil
	}
	return r.Send([]byte(line + "\r\n"))
}

func (r *Relay) Send(payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	if _, err := r.conn.Write(payload); err != nil {
		r.failed.Add(1)
		return err
	}
	r.sent.Add(1)
	return nil
}

func (r *Relay) Stats() Stats {
	return Stats{Dest: r.dest, Sent: r.sent.Load(), Failed: r.failed.Load()}
}

func (r *Relay) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}
