package system

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const procNetDev = "/proc/net/dev"

type NetCounters struct {
	RxBytes uint64
	TxBytes uint64
}

// ReadNetCounters returns per-interface byte counters from /proc/net/dev, keyed by interface name.
func ReadNetCounters() (map[string]NetCounters, error) {
	f, err := os.Open(procNetDev)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", procNetDev, err)
	}
	defer f.Close()
	return ParseNetDev(f)
}

// ReadInterfaceCounters returns counters for a single interface.
func ReadInterfaceCounters(name string) (NetCounters, error) {
	all, err := ReadNetCounters()
	if err != nil {
		return NetCounters{}, err
	}
	c, ok := all[name]
	if !ok {
		return NetCounters{}, fmt.Errorf("interface %q not in %s", name, procNetDev)
	}
	return c, nil
}

func ParseNetDev(r io.Reader) (map[string]NetCounters, error) {
	out := make(map[string]NetCounters)
	s := bufio.NewScanner(r)
	lineNo := 0
	for s.Scan() {
		lineNo++
		if lineNo <= 2 {
			continue
		}
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		iface := strings.TrimSpace(parts[0])
		if iface == "" {
			continue
		}
		metrics := strings.Fields(strings.TrimSpace(parts[1]))
		if len(metrics) < 16 {
			continue
		}
		rx, rxErr := strconv.ParseUint(metrics[0], 10, 64)
		tx, txErr := strconv.ParseUint(metrics[8], 10, 64)
		if rxErr != nil || txErr != nil {
			continue
		}
		out[iface] = NetCounters{RxBytes: rx, TxBytes: tx}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", procNetDev, err)
	}
	return out, nil
}
