// Package addrpool manages the finite set of multicast chat addresses
// assignable to projects. The pool is generated once at startup as a
// contiguous ascending range; acquire always hands out the numerically
// smallest address still available, and released addresses become eligible
// for reuse.
package addrpool

import (
	"encoding/binary"
	"fmt"
	"net"
	"sort"
	"sync"
)

// Pool is a serialized allocator over a fixed IPv4 range. Addresses are
// compared as integers (four octets big-endian), not as strings.
type Pool struct {
	mu        sync.Mutex
	available []uint32 // sorted ascending
	inUse     map[uint32]struct{}
}

// New builds a pool of size consecutive addresses starting at base.
func New(base string, size int) (*Pool, error) {
	ip := net.ParseIP(base)
	if ip = ip.To4(); ip == nil {
		return nil, fmt.Errorf("addrpool: base %q is not an IPv4 address", base)
	}
	if size <= 0 {
		return nil, fmt.Errorf("addrpool: invalid pool size %d", size)
	}

	start := binary.BigEndian.Uint32(ip)
	available := make([]uint32, size)
	for i := range available {
		available[i] = start + uint32(i)
	}

	return &Pool{available: available, inUse: make(map[uint32]struct{}, size)}, nil
}

// Acquire removes and returns the smallest available address. ok is false
// when the pool is exhausted; that is the only failure mode.
func (p *Pool) Acquire() (addr string, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.available) == 0 {
		return "", false
	}

	a := p.available[0]
	p.available = p.available[1:]
	p.inUse[a] = struct{}{}
	return format(a), true
}

// Release returns addr to the pool. Addresses that were never handed out (or
// were already released) are ignored, so the pool can never hold duplicates.
func (p *Pool) Release(addr string) {
	ip := net.ParseIP(addr)
	if ip = ip.To4(); ip == nil {
		return
	}
	a := binary.BigEndian.Uint32(ip)

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.inUse[a]; !ok {
		return
	}
	delete(p.inUse, a)

	i := sort.Search(len(p.available), func(i int) bool { return p.available[i] >= a })
	p.available = append(p.available, 0)
	copy(p.available[i+1:], p.available[i:])
	p.available[i] = a
}

// Available reports how many addresses remain assignable.
func (p *Pool) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.available)
}

func format(a uint32) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], a)
	return net.IP(b[:]).String()
}
