package stream

import "net"

// LocalIP discovers the address of the interface routed towards the
// internet. No packets are sent; dialing UDP only resolves the route.
// Falls back to the loopback address on machines with no route at all.
func LocalIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()

	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}
