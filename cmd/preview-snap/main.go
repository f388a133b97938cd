// preview-snap connects to a running panel's preview feed and saves
// the first frame it receives. Handy for checking exposure from a
// remote shell without opening the browser panel.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8000", "panel address")
	out := flag.String("out", "snap.jpg", "output file")
	timeout := flag.Duration("timeout", 10*time.Second, "how long to wait for a frame")
	flag.Parse()

	url := fmt.Sprintf("ws://%s/ws/preview", *addr)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect %s: %v\n", url, err)
		os.Exit(1)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(*timeout))
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			fmt.Fprintf(os.Stderr, "no frame received: %v\n", err)
			os.Exit(1)
		}
		// The feed may interleave control/status text; frames are binary.
		if msgType != websocket.BinaryMessage {
			continue
		}
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", *out, err)
			os.Exit(1)
		}
		fmt.Printf("saved %d bytes to %s\n", len(data), *out)
		return
	}
}
