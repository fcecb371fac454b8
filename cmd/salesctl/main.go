package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ebosoh/sales-agent/internal/profile"
	"github.com/ebosoh/sales-agent/internal/tui/client"
)

// slowTimeout bounds the calls that run the text pipeline.
const slowTimeout = 10 * time.Minute

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Usage = printUsage
	flag.Parse()

	name := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(name); err != nil {
		fail(err)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	socketPath := profile.SocketPath(name)
	c, err := client.New(socketPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot connect to daemon for profile %q: %v\n", name, err)
		os.Exit(1)
	}
	defer func() { _ = c.Close() }()

	out := &printer{json: *jsonFlag}
	timeout := 10 * time.Second
	switch args[0] {
	case "replies", "popular", "matches":
		timeout = slowTimeout
	case "watch":
		timeout = 0
	}
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "status":
		cmdStatus(ctx, c, out)
	case "start", "stop":
		cmdMonitor(ctx, c, cmd, out)
	case "watch":
		cmdWatch(ctx, c, rest, out)
	case "groups":
		cmdGroups(ctx, c, rest, out)
	case "catalog":
		cmdCatalog(ctx, c, rest, out)
	case "fraud":
		cmdFraud(ctx, c, rest, out)
	case "calls":
		cmdCalls(ctx, c, rest, out)
	case "replies":
		cmdReplies(ctx, c, rest, out)
	case "popular":
		cmdPopular(ctx, c, rest, out)
	case "matches":
		cmdMatches(ctx, c, out)
	case "picture":
		cmdPicture(ctx, c, rest)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: salesctl [--profile <name>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  status                          Show monitor status")
	fmt.Fprintln(os.Stderr, "  start | stop                    Start or stop monitoring")
	fmt.Fprintln(os.Stderr, "  watch [prefix...]               Follow status events")
	fmt.Fprintln(os.Stderr, "  groups [list|add|rm] [name]     Manage monitored groups")
	fmt.Fprintln(os.Stderr, "  catalog [list|add|rm]           Manage the seller catalog")
	fmt.Fprintln(os.Stderr, "  fraud [list|report|check|share] Manage fraud reports")
	fmt.Fprintln(os.Stderr, "  calls [list|log]                Manage call logs")
	fmt.Fprintln(os.Stderr, "  replies [--me <id>]             Replies to your messages")
	fmt.Fprintln(os.Stderr, "  popular [--limit n]             Recent products")
	fmt.Fprintln(os.Stderr, "  matches                         Buying requests matching the catalog")
	fmt.Fprintln(os.Stderr, "  picture <message-id> <file>     Save a message picture")
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func usage(line string) {
	fmt.Fprintln(os.Stderr, "usage: salesctl "+line)
	os.Exit(1)
}

// printer writes either JSON or the command's text rendering.
type printer struct {
	json bool
}

// emit prints v as JSON when requested and reports whether it did.
func (p *printer) emit(v any) bool {
	if !p.json {
		return false
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
	return true
}
