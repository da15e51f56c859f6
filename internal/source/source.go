// Package source implements the address pools the traversal engine
// draws candidates from: fixed lists, local files and remote lists of
// either ip:port entries or CIDR blocks.
package source

import (
	"context"
	"log/slog"

	"github.com/August26/ipopt-go/internal/model"
	"github.com/August26/ipopt-go/internal/parser"
)

// Static serves a fixed address slice. Used for manual lists and tests.
type Static struct {
	name  string
	addrs []model.Address
}

func NewStatic(name string, addrs []model.Address) *Static {
	return &Static{name: name, addrs: addrs}
}

func (s *Static) Name() string { return s.name }

func (s *Static) Fetch(ctx context.Context) []model.Address {
	out := make([]model.Address, len(s.addrs))
	copy(out, s.addrs)
	for i := range out {
		out[i].Pool = s.name
	}
	return out
}

// File reads candidates from a local address list file.
type File struct {
	name string
	path string
	port int
	log  *slog.Logger
}

func NewFile(name, path string, port int, log *slog.Logger) *File {
	return &File{name: name, path: path, port: port, log: log}
}

func (f *File) Name() string { return f.name }

// Fetch returns an empty slice on any file error; a broken pool is
// skipped by the engine, never fatal.
func (f *File) Fetch(ctx context.Context) []model.Address {
	addrs, err := parser.LoadFromFile(f.path, f.port)
	if err != nil {
		f.log.Warn("address list unreadable", "pool", f.name, "path", f.path, "err", err)
		return nil
	}
	for i := range addrs {
		addrs[i].Pool = f.name
	}
	return addrs
}
