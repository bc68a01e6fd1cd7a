package debug

import (
	"bytes"
	"encoding/hex"
	"net"
	"testing"
	"time"

	"github.com/cherigo/cp2/encoding/uncompressed256"
	"github.com/cherigo/cp2/mem"
)

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	raw := []byte("abc$def#ghi}jkl")
	got := unescape(escape(raw))
	if !bytes.Equal(got, raw) {
		t.Fatalf("got %q, want %q", got, raw)
	}
}

func TestChecksumMatchesModSum(t *testing.T) {
	if string(checksum([]byte("OK"))) != "9a" {
		t.Fatalf("got %s", checksum([]byte("OK")))
	}
}

func TestParseRangeParsesAddrLength(t *testing.T) {
	a, b := parseRange("1000,10")
	if a != 0x1000 || b != 0x10 {
		t.Fatalf("got %#x, %#x", a, b)
	}
}

// readFramed reads one "$...#cc" framed packet off c, stripping the ack
// byte the server sends first.
func readFramed(t *testing.T, c net.Conn) string {
	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 4096)
	n, err := c.Read(buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	data := buf[:n]
	start := bytes.IndexByte(data, '$')
	end := bytes.IndexByte(data, '#')
	if start < 0 || end < 0 {
		t.Fatalf("malformed packet %q", data)
	}
	return string(unescape(data[start+1 : end]))
}

func sendFramed(t *testing.T, c net.Conn, body string) {
	data := escape([]byte(body))
	framed := "$" + string(data) + "#" + string(checksum(data))
	if _, err := c.Write([]byte(framed)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestGDBServerReadWriteRegister(t *testing.T) {
	tbl := newTable()
	sim := mem.NewSim(uint64(uncompressed256.Codec{}.Size()))
	view := &SimMemView{Sim: sim}
	server := NewGDBServer(tbl, view, view, uncompressed256.Codec{})

	client, srv := net.Pipe()
	done := make(chan struct{})
	go func() {
		server.Serve(srv)
		close(done)
	}()

	sendFramed(t, client, "P5=3412000000000000") // little-endian 0x1234
	if ack := readAck(t, client); ack != '+' {
		t.Fatalf("expected ack, got %q", ack)
	}
	resp := readFramed(t, client)
	if resp != "OK" {
		t.Fatalf("got %q", resp)
	}

	if v, ok := tbl.ReadInt(5); !ok || v != 0x1234 {
		t.Fatalf("register write did not take effect: %#x, %v", v, ok)
	}

	sendFramed(t, client, "D")
	readAck(t, client)
	client.Close()
	<-done
}

func readAck(t *testing.T, c net.Conn) byte {
	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 1)
	if _, err := c.Read(buf); err != nil {
		t.Fatalf("read ack failed: %v", err)
	}
	return buf[0]
}

func TestGDBServerMemoryReadWrite(t *testing.T) {
	tbl := newTable()
	sim := mem.NewSim(uint64(uncompressed256.Codec{}.Size()))
	view := &SimMemView{Sim: sim}
	server := NewGDBServer(tbl, view, view, uncompressed256.Codec{})

	client, srv := net.Pipe()
	done := make(chan struct{})
	go func() {
		server.Serve(srv)
		close(done)
	}()

	payload := hex.EncodeToString([]byte("hi"))
	sendFramed(t, client, "M100,2:"+payload)
	readAck(t, client)
	if resp := readFramed(t, client); resp != "OK" {
		t.Fatalf("got %q", resp)
	}

	sendFramed(t, client, "m100,2")
	readAck(t, client)
	resp := readFramed(t, client)
	got, _ := hex.DecodeString(resp)
	if string(got) != "hi" {
		t.Fatalf("got %q", got)
	}

	sendFramed(t, client, "D")
	readAck(t, client)
	client.Close()
	<-done
}
