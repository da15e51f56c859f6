package source

import (
	"fmt"
	"log/slog"
	"math/rand"

	"gopkg.in/ini.v1"

	"github.com/August26/ipopt-go/internal/model"
)

// cloudflareFallbackCIDRs is used when the official list is unreachable.
var cloudflareFallbackCIDRs = []string{
	"173.245.48.0/20",
	"103.21.244.0/22",
	"103.22.200.0/22",
	"103.31.4.0/22",
	"141.101.64.0/18",
	"108.162.192.0/18",
	"190.93.240.0/20",
	"188.114.96.0/20",
	"197.234.240.0/22",
	"198.41.128.0/17",
	"162.158.0.0/15",
	"104.16.0.0/13",
	"104.24.0.0/14",
	"172.64.0.0/13",
	"131.0.72.0/22",
}

// DefaultPools returns the built-in pool set in priority order:
// the official Cloudflare ranges first, then community-maintained
// CIDR lists, the reverse-proxy list, and the widest ASN ranges last.
func DefaultPools(port, maxAddrs int, rnd *rand.Rand, log *slog.Logger) []model.Pool {
	cidrPool := func(name, url string, priority int, fallback []string) model.Pool {
		return model.Pool{
			Name:     name,
			Priority: priority,
			Source:   NewRemoteCIDR(name, url, fallback, maxAddrs, rnd, log),
		}
	}

	return []model.Pool{
		cidrPool("official", "https://www.cloudflare.com/ips-v4/", 0, cloudflareFallbackCIDRs),
		cidrPool("cm", "https://raw.githubusercontent.com/cmliu/cmliu/main/CF-CIDR.txt", 1, nil),
		cidrPool("as13335", "https://raw.githubusercontent.com/ipverse/asn-ip/master/as/13335/ipv4-aggregated.txt", 2, nil),
		cidrPool("as209242", "https://raw.githubusercontent.com/ipverse/asn-ip/master/as/209242/ipv4-aggregated.txt", 3, nil),
		{
			Name:     "proxyip",
			Priority: 4,
			Source:   NewRemoteList("proxyip", "https://raw.githubusercontent.com/cmliu/ACL4SSR/main/baipiao.txt", port, maxAddrs, rnd, log),
		},
		cidrPool("as24429", "https://raw.githubusercontent.com/ipverse/asn-ip/master/as/24429/ipv4-aggregated.txt", 5, nil),
		cidrPool("as35916", "https://raw.githubusercontent.com/ipverse/asn-ip/master/as/35916/ipv4-aggregated.txt", 6, nil),
		cidrPool("as199524", "https://raw.githubusercontent.com/ipverse/asn-ip/master/as/199524/ipv4-aggregated.txt", 7, nil),
	}
}

// LoadPools reads a pool set from an INI file. Each section describes
// one pool:
//
//	[official]
//	priority = 0
//	kind     = cidr        ; cidr | list | file
//	url      = https://www.cloudflare.com/ips-v4/
//
//	[local]
//	priority = 1
//	kind     = file
//	path     = ./candidates.txt
//
// Sections without an explicit priority keep their declaration order.
func LoadPools(path string, port, maxAddrs int, rnd *rand.Rand, log *slog.Logger) ([]model.Pool, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load pools file: %w", err)
	}

	var pools []model.Pool
	for i, sec := range cfg.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		name := sec.Name()
		priority := sec.Key("priority").MustInt(i)
		kind := sec.Key("kind").MustString("cidr")

		var src model.AddressSource
		switch kind {
		case "cidr":
			url := sec.Key("url").String()
			if url == "" {
				return nil, fmt.Errorf("pool %q: cidr pools need a url", name)
			}
			src = NewRemoteCIDR(name, url, nil, maxAddrs, rnd, log)
		case "list":
			url := sec.Key("url").String()
			if url == "" {
				return nil, fmt.Errorf("pool %q: list pools need a url", name)
			}
			src = NewRemoteList(name, url, port, maxAddrs, rnd, log)
		case "file":
			p := sec.Key("path").String()
			if p == "" {
				return nil, fmt.Errorf("pool %q: file pools need a path", name)
			}
			src = NewFile(name, p, port, log)
		default:
			return nil, fmt.Errorf("pool %q: unknown kind %q", name, kind)
		}

		pools = append(pools, model.Pool{Name: name, Priority: priority, Source: src})
	}

	if len(pools) == 0 {
		return nil, fmt.Errorf("pools file %s defines no pools", path)
	}
	return pools, nil
}
