package source

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"net"
)

// ExpandCIDRs samples up to limit distinct host addresses from the given
// CIDR blocks. Sampling proceeds in rounds: round N draws N random hosts
// from every block, so small blocks are not starved by huge ones. Rounds
// are capped so a short CIDR list cannot spin forever.
func ExpandCIDRs(cidrs []string, limit int, rnd *rand.Rand) []string {
	const maxRounds = 100

	seen := make(map[string]struct{}, limit)
	out := make([]string, 0, limit)

	for round := 1; len(out) < limit && round <= maxRounds; round++ {
		for _, cidr := range cidrs {
			if len(out) >= limit {
				break
			}
			for _, ip := range randomHosts(cidr, round, rnd) {
				if _, ok := seen[ip]; ok {
					continue
				}
				seen[ip] = struct{}{}
				out = append(out, ip)
				if len(out) >= limit {
					break
				}
			}
		}
	}
	return out
}

// randomHosts draws up to n random host addresses from one CIDR block,
// excluding the network and broadcast addresses.
func randomHosts(cidr string, n int, rnd *rand.Rand) []string {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil
	}
	v4 := network.IP.To4()
	if v4 == nil {
		return nil
	}

	ones, bits := network.Mask.Size()
	hosts := int64(1)<<(bits-ones) - 2
	if hosts <= 0 {
		return nil
	}
	if int64(n) > hosts {
		n = int(hosts)
	}

	base := binary.BigEndian.Uint32(v4)
	out := make([]string, 0, n)
	seen := make(map[uint32]struct{}, n)

	// Random offsets can collide inside small blocks; bound the attempts
	// instead of looping until full coverage.
	for attempts := 0; len(out) < n && attempts < n*10; attempts++ {
		offset := uint32(rnd.Int63n(hosts) + 1)
		addr := base + offset
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, formatIPv4(addr))
	}
	return out
}

func formatIPv4(addr uint32) string {
	return fmt.Sprintf("%d.%d.%d.%d", byte(addr>>24), byte(addr>>16), byte(addr>>8), byte(addr))
}
