// orionctl is a thin command-line client for the oriond daemon.  It
// speaks the same framed socket protocol as the popup UI, which makes
// it handy for scripting and for poking the daemon without a display.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/grishmahat/orion/internal/ipc"
	"github.com/grishmahat/orion/internal/protocol"
	"github.com/grishmahat/orion/internal/setup"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	switch command {
	case "search":
		if len(os.Args) < 3 {
			log.Fatal("Usage: orionctl search <text>")
		}
		cmdSearch(strings.Join(os.Args[2:], " "))
	case "open":
		if len(os.Args) < 3 {
			log.Fatal("Usage: orionctl open <url>")
		}
		cmdOpen(os.Args[2])
	case "reload":
		cmdReload()
	case "status":
		cmdStatus()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("orionctl - control interface for the oriond daemon")
	fmt.Println()
	fmt.Println("Usage: orionctl <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  search <text>   Resolve a query and print the results")
	fmt.Println("  open <url>      Ask the daemon to open a URL")
	fmt.Println("  reload          Reload the daemon's configuration from disk")
	fmt.Println("  status          Check that the daemon answers on its socket")
	fmt.Println()
	fmt.Println("The socket path comes from the default config location; set")
	fmt.Println("ORION_SOCKET to override it.")
}

// socketAddr resolves the daemon socket, preferring the env override.
func socketAddr() string {
	if addr := os.Getenv("ORION_SOCKET"); addr != "" {
		return addr
	}
	paths, err := setup.DefaultPaths()
	if err != nil {
		log.Fatalf("Cannot resolve socket path: %v", err)
	}
	return paths.Socket
}

// roundTrip sends one message and waits for the daemon's reply.
func roundTrip(m protocol.Message) protocol.Message {
	conn, err := ipc.Dial(socketAddr())
	if err != nil {
		log.Fatalf("Cannot reach daemon (is oriond running?): %v", err)
	}
	defer conn.Close()

	if err := conn.Send(m); err != nil {
		log.Fatalf("Send failed: %v", err)
	}
	reply, err := conn.Receive()
	if err != nil {
		log.Fatalf("No reply from daemon: %v", err)
	}
	return reply
}

// -- Commands --

func cmdSearch(text string) {
	reply := roundTrip(&protocol.SearchQuery{Text: text, MaxResults: 10})
	switch r := reply.(type) {
	case *protocol.SearchResponse:
		if len(r.Results) == 0 {
			fmt.Println("No results.")
			return
		}
		for i, res := range r.Results {
			fmt.Printf("%2d. %s", i+1, res.Title)
			if res.Description != "" {
				fmt.Printf(" — %s", res.Description)
			}
			fmt.Printf("  [%s %s]\n", res.Action.Type, res.Action.Value)
		}
	case *protocol.Redirect:
		fmt.Printf("Redirect: %s\n", r.URL)
	case *protocol.Error:
		log.Fatalf("Daemon error: %s", r.Text)
	default:
		log.Fatalf("Unexpected reply: %T", reply)
	}
}

func cmdOpen(url string) {
	conn, err := ipc.Dial(socketAddr())
	if err != nil {
		log.Fatalf("Cannot reach daemon (is oriond running?): %v", err)
	}
	defer conn.Close()

	// Redirects are fire-and-forget; the daemon only replies on failure
	// and launch errors land in its log.
	if err := conn.Send(&protocol.Redirect{URL: url}); err != nil {
		log.Fatalf("Send failed: %v", err)
	}
	fmt.Println("OK")
}

func cmdReload() {
	reply := roundTrip(&protocol.ConfigUpdate{})
	switch r := reply.(type) {
	case *protocol.ConfigUpdate:
		fmt.Println("Configuration reloaded.")
	case *protocol.Error:
		log.Fatalf("Reload failed: %s", r.Text)
	default:
		log.Fatalf("Unexpected reply: %T", reply)
	}
}

func cmdStatus() {
	reply := roundTrip(&protocol.ConfigUpdate{})
	switch r := reply.(type) {
	case *protocol.ConfigUpdate:
		fmt.Println("Daemon is up.")
	case *protocol.Error:
		log.Fatalf("Daemon reported: %s", r.Text)
	default:
		log.Fatalf("Unexpected reply: %T", reply)
	}
}
