package udp

import (
	"errors"
	"net"
	"testing"
	"time"
)

type fakeConn struct {
	writes    [][]byte
	writeErr  error
	closed    bool
	closeErr  error
	writeHits int
}

func (c *fakeConn) Write(p []byte) (int, error) {
	c.writeHits++
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	cp := append([]byte(nil), p...)
	c.writes = append(c.writes, cp)
	return len(p), nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return c.closeErr
}

const hdtLine = "$GPHDT,274.07,T*03"

func TestNewRelay_DialsResolvedAddr(t *testing.T) {
	var gotNetwork string
	var gotRaddr *net.UDPAddr
	fc := &fakeConn{}

	dial := func(network string, laddr, raddr *net.UDPAddr) (udpConn, error) {
		gotNetwork = network
		gotRaddr = raddr
		return fc, nil
	}

	r, err := newRelay("127.0.0.1:10110", net.ResolveUDPAddr, dial)
	if err != nil {
		t.Fatalf("newRelay() error: %v", err)
	}
	if gotNetwork != "udp" {
		t.Fatalf("network=%q want %q", gotNetwork, "udp")
	}
	if gotRaddr == nil || gotRaddr.Port != 10110 || !gotRaddr.IP.Equal(net.IPv4(127, 0, 0, 1)) {
		t.Fatalf("raddr=%v want 127.0.0.1:10110", gotRaddr)
	}
	if err := r.Close(); err != nil || !fc.closed {
		t.Fatalf("Close() err=%v closed=%v", err, fc.closed)
	}
}

func TestNewRelay_ResolveFailure(t *testing.T) {
	resolveErr := errors.New("nope")
	resolve := func(network, address string) (*net.UDPAddr, error) {
		return nil, resolveErr
	}
	dial := func(network string, laddr, raddr *net.UDPAddr) (udpConn, error) {
		return &fakeConn{}, nil
	}

	_, err := newRelay("bad:addr", resolve, dial)
	if !errors.Is(err, resolveErr) {
		t.Fatalf("err=%v want %v", err, resolveErr)
	}
}

func TestRelay_SendLine(t *testing.T) {
	fc := &fakeConn{}
	r := &Relay{dest: "x", conn: fc}

	for _, in := range []string{hdtLine, hdtLine + "\r\n", "", "\r\n"} {
		if err := r.SendLine(in); err != nil {
			t.Fatalf("SendLine(%q) error: %v", in, err)
		}
	}
	if fc.writeHits != 2 {
		t.Fatalf("writes=%d want 2", fc.writeHits)
	}
	for i, w := range fc.writes {
		if string(w) != hdtLine+"\r\n" {
			t.Fatalf("write[%d]=%q want %q", i, w, hdtLine+"\r\n")
		}
	}
	if st := r.Stats(); st.Sent != 2 || st.Failed != 0 || st.Dest != "x" {
		t.Fatalf("stats=%+v", st)
	}
}

func TestRelay_Send_PropagatesError(t *testing.T) {
	wantErr := errors.New("boom")
	fc := &fakeConn{writeErr: wantErr}
	r := &Relay{dest: "x", conn: fc}

	if err := r.SendLine(hdtLine); !errors.Is(err, wantErr) {
		t.Fatalf("err=%v want %v", err, wantErr)
	}
	if st := r.Stats(); st.Sent != 0 || st.Failed != 1 {
		t.Fatalf("stats=%+v", st)
	}
}

func TestRelay_Close_NilConnNoPanic(t *testing.T) {
	r := &Relay{}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
}

func TestRelay_Loopback(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket: %v", err)
	}
	defer pc.Close()

	r, err := NewRelay(pc.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewRelay: %v", err)
	}
	defer r.Close()

	if err := r.SendLine(hdtLine); err != nil {
		t.Fatalf("SendLine: %v", err)
	}
	_ = pc.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 256)
	n, _, err := pc.ReadFrom(buf)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if got := string(buf[:n]); got != hdtLine+"\r\n" {
		t.Fatalf("datagram=%q want %q", got, hdtLine+"\r\n")
	}
}
