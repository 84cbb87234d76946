// Command dnsdecode decodes a raw DNS wire-format message and prints its
// header, question, and resource-record sections. It never opens a
// network socket: the message comes from a file or stdin, which makes it
// usable on captured packets (e.g. a tcpdump payload slice) without
// needing a live resolver.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/relayaudit/credprobe/internal/dnswire"
)

func main() {
	var (
		path  = flag.String("in", "-", "Path to a file containing a raw DNS message, or - for stdin")
		isHex = flag.Bool("hex", false, "Treat the input as hex text instead of raw bytes")
		quiet = flag.Bool("quiet", false, "Suppress output (exit status indicates whether decoding succeeded)")
	)
	flag.Parse()

	raw, err := readInput(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dnsdecode: %v\n", err)
		os.Exit(1)
	}

	if *isHex {
		raw, err = hex.DecodeString(string(trimNewline(raw)))
		if err != nil {
			fmt.Fprintf(os.Stderr, "dnsdecode: invalid hex input: %v\n", err)
			os.Exit(1)
		}
	}

	msg, err := dnswire.Decode(raw)
	if err != nil {
		if !*quiet {
			fmt.Fprintf(os.Stderr, "dnsdecode: %v\n", err)
		}
		os.Exit(1)
	}

	if *quiet {
		return
	}

	printMessage(msg)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

func printMessage(m dnswire.Message) {
	h := m.Header
	fmt.Printf("id=%d opcode=%d rcode=%d qr=%t aa=%t tc=%t rd=%t ra=%t\n",
		h.ID, h.Opcode(), h.RCode(),
		h.Flags&dnswire.FlagQR != 0,
		h.Flags&dnswire.FlagAA != 0,
		h.Flags&dnswire.FlagTC != 0,
		h.Flags&dnswire.FlagRD != 0,
		h.Flags&dnswire.FlagRA != 0,
	)
	fmt.Printf("questions=%d answers=%d authorities=%d additionals=%d\n",
		len(m.Questions), len(m.Answers), len(m.Authorities), len(m.Additionals))

	for _, q := range m.Questions {
		fmt.Printf(";; QUESTION: %s QTYPE%d QCLASS%d\n", dotted(q.Name), q.QType, q.QClass)
	}

	printSection("ANSWER", m.Answers)
	printSection("AUTHORITY", m.Authorities)
	printSection("ADDITIONAL", m.Additionals)
}

func printSection(title string, rrs []dnswire.ResourceRecord) {
	if len(rrs) == 0 {
		return
	}
	fmt.Printf(";; %s SECTION:\n", title)
	for _, rr := range rrs {
		fmt.Println(formatRR(rr))
	}
}

// formatRR renders a resource record. dnswire.ResourceRecord carries opaque
// RDATA (it does not interpret record types), so well-known fixed-width
// types are rendered in human form and everything else falls back to hex.
func formatRR(rr dnswire.ResourceRecord) string {
	name := dotted(rr.Name)
	switch rr.Type {
	case 1: // A
		if len(rr.Data) == 4 {
			ip := net.IP(rr.Data)
			return fmt.Sprintf("%s %d IN A %s", name, rr.TTL, ip.String())
		}
	case 28: // AAAA
		if len(rr.Data) == 16 {
			ip := net.IP(rr.Data)
			return fmt.Sprintf("%s %d IN AAAA %s", name, rr.TTL, ip.String())
		}
	}
	return fmt.Sprintf("%s %d IN TYPE%d \\# %d %s", name, rr.TTL, rr.Type, len(rr.Data), hex.EncodeToString(rr.Data))
}

func dotted(name string) string {
	if name == "" {
		return "."
	}
	return name
}
