package debug

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/cherigo/cp2/encoding"
)

// escape and checksum implement the GDB remote serial protocol's packet
// framing: '$' and '#' are packet delimiters and must be escaped inside
// packet data, and every packet is terminated by a two-hex-digit mod-256
// checksum.
func escape(p []byte) []byte {
	out := make([]byte, 0, len(p))
	for _, c := range p {
		if c == '#' || c == '$' || c == '}' {
			out = append(out, '}')
			out = append(out, c^0x20)
		} else {
			out = append(out, c)
		}
	}
	return out
}

func unescape(p []byte) []byte {
	out := make([]byte, 0, len(p))
	escaped := false
	for i, c := range p {
		if escaped {
			escaped = false
			continue
		}
		if c == '}' && i < len(p)-1 {
			escaped = true
			out = append(out, p[i+1]^0x20)
		} else {
			out = append(out, c)
		}
	}
	return out
}

func checksum(p []byte) []byte {
	chk := 0
	for _, c := range p {
		chk = (chk + int(c)) % 256
	}
	return []byte(fmt.Sprintf("%02x", chk))
}

// parseRange parses the "addr,length" tail GDB uses for memory and Xfer
// commands. Everything up to the last ':' is skipped first, so an
// "...:addr,length" packet body parses the same way.
func parseRange(s string) (uint64, uint64) {
	tmp := strings.Split(s, ":")
	tmp = strings.Split(tmp[len(tmp)-1], ",")
	if len(tmp) != 2 {
		return 0, 0
	}
	a, _ := strconv.ParseUint(tmp[0], 16, 64)
	b, _ := strconv.ParseUint(tmp[1], 16, 64)
	return a, b
}

// MemReader and MemWriter let the server read and write target memory
// without depending on mem.Access's capability-aware signatures: the RSP
//'m'/'M' commands address memory as flat DDC-relative bytes, the way a
// debugger attached to real hardware would.
type MemReader interface {
	ReadBytes(addr, length uint64) ([]byte, error)
}
type MemWriter interface {
	WriteBytes(addr uint64, data []byte) error
}

// GDBServer exposes a Table and a flat memory view over the GDB remote
// serial protocol.
type GDBServer struct {
	Table *Table
	Mem   MemReader
	MemW  MemWriter
	Codec encoding.Codec

	noAck bool
}

// NewGDBServer wires a server around an already-constructed Table and
// memory view.
func NewGDBServer(t *Table, mem MemReader, memw MemWriter, codec encoding.Codec) *GDBServer {
	return &GDBServer{Table: t, Mem: mem, MemW: memw, Codec: codec}
}

// Serve accepts one client connection and runs its packet loop to
// completion; only one connection is served at a time.
func (s *GDBServer) Serve(c net.Conn) {
	fmt.Fprintf(os.Stderr, "debug: GDB stub connected from %s\n", c.RemoteAddr())
	(&gdbConn{Conn: c, server: s}).run()
}

type gdbConn struct {
	net.Conn
	server    *GDBServer
	noAck     bool
	noAckTest bool
}

func (c *gdbConn) send(p string) error {
	data := escape([]byte(p))
	data = []byte("$" + string(data) + "#" + string(checksum(data)))
	_, err := c.Write(data)
	return errors.Wrap(err, "debug: gdb socket write failed")
}

func (c *gdbConn) ack(b byte) {
	if !c.noAck {
		c.Write([]byte{b})
	}
}

// regWidth is the number of bytes the RSP 'g'/'p' commands transfer per
// integer register: a fixed 8 bytes for this 64-bit MIPS hart.
const regWidth = 8

func fmtReg(v uint64) string {
	var buf [regWidth]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return hex.EncodeToString(buf[:])
}

func parseReg(s string) uint64 {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) < regWidth {
		return 0
	}
	return binary.LittleEndian.Uint64(b[:regWidth])
}

// handle dispatches a single unescaped packet body by its leading letter,
// extended with a vendor query that exposes the parallel capability
// register file GDB's stock MIPS target description has no room for.
func (c *gdbConn) handle(cmdb []byte) error {
	t := c.server.Table
	if len(cmdb) == 0 {
		return nil
	}
	b, rest := cmdb[0], string(cmdb[1:])
	var cmd, args string
	if strings.Contains(rest, ":") {
		parts := strings.SplitN(rest, ":", 2)
		cmd, args = parts[0], parts[1]
	} else {
		cmd = rest
	}

	switch b {
	case 'q':
		switch cmd {
		case "Supported":
			c.send("PacketSize=4000")
		case "Attached":
			c.send("1")
		case "Symbol":
			c.send("OK")
		case "TStatus":
			c.send("T0")
		case "CapReg":
			// Vendor query "qCapReg:<idx>" reads capability debug
			// register idx, wire-encoded with the hart's configured
			// codec, tag byte appended.
			idx, _ := strconv.Atoi(args)
			creg, ok := t.ReadCap(idx)
			switch {
			case idx == idxCapCause:
				c.send(fmtReg(t.ReadCapCause()))
			case idx == idxTagBits:
				c.send(fmtReg(t.TagBitset()))
			case ok:
				wire := c.server.Codec.Compress(creg)
				tagByte := byte(0)
				if creg.Tag {
					tagByte = 1
				}
				c.send(hex.EncodeToString(append(wire, tagByte)))
			default:
				c.send("")
			}
		default:
			c.send("")
		}
	case 'Q':
		if cmd == "StartNoAckMode" {
			c.noAckTest = true
			c.send("OK")
		} else {
			c.send("")
		}
	case 'g': // read all integer registers 0-71
		var out bytes.Buffer
		for i := 0; i < numIntRegs; i++ {
			v, _ := t.ReadInt(i)
			out.WriteString(fmtReg(v))
		}
		c.send(out.String())
	case 'G': // write all integer registers 0-71
		raw, err := hex.DecodeString(rest)
		if err != nil {
			c.send("E01")
			break
		}
		for i := 0; i*regWidth < len(raw) && i < numIntRegs; i++ {
			t.WriteInt(i, binary.LittleEndian.Uint64(raw[i*regWidth:(i+1)*regWidth]))
		}
		c.send("OK")
	case 'p': // read one integer register
		idx, _ := strconv.ParseUint(cmd, 16, 0)
		v, ok := t.ReadInt(int(idx))
		if !ok {
			c.send("")
			break
		}
		c.send(fmtReg(v))
	case 'P': // write one integer register "P<idx>=<hex>"
		parts := strings.SplitN(cmd, "=", 2)
		if len(parts) != 2 {
			c.send("E01")
			break
		}
		idx, _ := strconv.ParseUint(parts[0], 16, 0)
		t.WriteInt(int(idx), parseReg(parts[1]))
		c.send("OK")
	case 'm': // read memory
		a, n := parseRange(rest)
		data, err := c.server.Mem.ReadBytes(a, n)
		if err != nil {
			c.send("E01")
			break
		}
		c.send(hex.EncodeToString(data))
	case 'M': // write memory "M<addr>,<len>:<hexdata>"
		head, hexdata, found := strings.Cut(rest, ":")
		if !found {
			c.send("E01")
			break
		}
		a, _ := parseRange(head)
		data, err := hex.DecodeString(hexdata)
		if err != nil {
			c.send("E01")
			break
		}
		if err := c.server.MemW.WriteBytes(a, data); err != nil {
			c.send("E01")
			break
		}
		c.send("OK")
	case '?':
		c.send("S05")
	case 'H':
		c.send("OK")
	case 'D':
		c.send("OK")
		return errors.New("debug: client detached")
	default:
		c.send("")
	}
	return nil
}

// run drives the packet loop: read a framed "$data#checksum" packet, ack
// it, dispatch it, repeat. There is no interrupt-byte watcher goroutine:
// this server has no running target to interrupt outside of packet
// handling.
func (c *gdbConn) run() {
	input := bufio.NewReader(c)
	var err error
	for {
		var b, chk []byte
		b, err = input.Peek(1)
		if err != nil {
			break
		}
		if b[0] == '+' || b[0] == '-' {
			input.Discard(1)
			if c.noAckTest && b[0] == '+' {
				c.noAck = true
			}
			c.noAckTest = false
			continue
		}
		if b[0] == 0x03 {
			input.Discard(1)
			continue
		}
		if b, err = input.ReadBytes('#'); err != nil {
			break
		}
		if chk, err = input.Peek(2); err != nil {
			break
		}
		input.Discard(2)

		data := b[1 : len(b)-1]
		if bytes.Equal(checksum(data), chk) {
			c.ack('+')
			if err = c.handle(unescape(data)); err != nil {
				break
			}
		} else {
			c.ack('-')
		}
	}
	if err != nil && c.server != nil {
		fmt.Fprintf(os.Stderr, "debug: gdb stub error: %v\n", err)
	}
	c.Close()
}
