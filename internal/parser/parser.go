package parser

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/August26/ipopt-go/internal/model"
)

// LoadFromFile reads an address list file line by line. It supports:
//   ip
//   ip:port
//   ip:port#comment
//
// Empty lines and lines starting with '#' are ignored. Invalid lines
// are skipped rather than failing the whole file.
func LoadFromFile(path string, defaultPort int) ([]model.Address, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open address list: %w", err)
	}
	defer f.Close()

	var out []model.Address
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		addr, err := ParseLine(line, defaultPort)
		if err != nil {
			continue
		}
		out = append(out, addr)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan address list: %w", err)
	}
	return out, nil
}

// ParseLine parses a single address list line into an Address.
//
// The part after '#' is a free-form source annotation. When it looks
// like a two-letter country code it is kept as the address's pre-known
// country so the run can skip the geo lookup for it.
func ParseLine(line string, defaultPort int) (model.Address, error) {
	main := line
	comment := ""
	if i := strings.Index(line, "#"); i >= 0 {
		main = strings.TrimSpace(line[:i])
		comment = strings.TrimSpace(line[i+1:])
	}
	if main == "" {
		return model.Address{}, fmt.Errorf("empty address in %q", line)
	}

	host := main
	port := defaultPort
	if strings.Contains(main, ":") {
		parts := strings.Split(main, ":")
		if len(parts) != 2 {
			return model.Address{}, fmt.Errorf("unrecognized address format: %q", line)
		}
		host = strings.TrimSpace(parts[0])
		p, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return model.Address{}, fmt.Errorf("invalid port in %q", line)
		}
		port = p
	}

	if port < 1 || port > 65535 {
		return model.Address{}, fmt.Errorf("port out of range in %q", line)
	}
	if !IsIPv4(host) {
		return model.Address{}, fmt.Errorf("invalid IPv4 literal: %q", host)
	}

	return model.Address{
		IP:      host,
		Port:    port,
		Country: countryFromComment(comment),
	}, nil
}

// IsIPv4 reports whether s is a plain IPv4 literal.
func IsIPv4(s string) bool {
	ip := net.ParseIP(s)
	return ip != nil && ip.To4() != nil
}

// countryFromComment extracts a country code from a source annotation.
// Only bare two-letter codes are trusted; anything else is treated as
// an opaque label and dropped.
func countryFromComment(comment string) string {
	if len(comment) != 2 {
		return ""
	}
	for _, r := range comment {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return ""
		}
	}
	return strings.ToUpper(comment)
}
