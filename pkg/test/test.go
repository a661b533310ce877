package test

import (
	"fmt"
	"net"
	"sync"
)

var (
	used = map[int]struct{}{}
	lock sync.Mutex
)

// RandomPort returns a free local port that no other test in this process
// has been handed.
func RandomPort() int {
	lock.Lock()
	defer lock.Unlock()
	for {
		l, err := net.Listen("tcp", "localhost:0")
		if err != nil {
			panic(fmt.Sprintf("find free port: %v", err))
		}
		port := l.Addr().(*net.TCPAddr).Port
		_ = l.Close()

		if _, ok := used[port]; !ok {
			used[port] = struct{}{}
			return port
		}
	}
}

// RandomAddr returns a localhost address on a free port.
func RandomAddr() string {
	return fmt.Sprintf("localhost:%d", RandomPort())
}
