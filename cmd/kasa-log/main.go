// Command kasa-log views and analyzes the CBOR event log written by
// kasa-server with the -events flag.
//
// Usage:
//
//	kasa-log <command> [flags] <file.events>
//
// Commands:
//
//	view     View events in human-readable format
//	export   Export events as JSON lines
//	stats    Show per-device and per-action counts
//
// Examples:
//
//	# View all events
//	kasa-log view kasa.events
//
//	# View command traffic for one device
//	kasa-log view -subject Lamp -action SET kasa.events
//
//	# Events from the last service run only
//	kasa-log view -instance 8b54a2f0-... kasa.events
//
//	# Export to JSONL for other tooling
//	kasa-log export kasa.events > kasa.jsonl
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/housekasa/kasa-go/pkg/log"
)

const usage = `kasa-log - Kasa event log analyzer

Usage:
  kasa-log <command> [flags] <file.events>

Commands:
  view     View events in human-readable format
  export   Export events as JSON lines
  stats    Show per-device and per-action counts

Use "kasa-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// filterFlags registers the shared filter flags on a flag set and
// returns a builder for the resulting filter.
func filterFlags(fs *flag.FlagSet) func() log.Filter {
	instance := fs.String("instance", "", "Filter by service-run instance ID")
	category := fs.String("category", "", "Filter by category (DEVICE, SYSTEM, SERVICE)")
	subject := fs.String("subject", "", "Filter by subject (device name)")
	action := fs.String("action", "", "Filter by action (SET, RETRY, TIMEOUT, ...)")
	since := fs.String("since", "", "Events at or after this time (RFC 3339)")
	until := fs.String("until", "", "Events before this time (RFC 3339)")

	return func() log.Filter {
		filter := log.Filter{
			Instance: *instance,
			Category: *category,
			Subject:  *subject,
			Action:   *action,
		}
		if *since != "" {
			t, err := time.Parse(time.RFC3339, *since)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: invalid -since: %v\n", err)
				os.Exit(1)
			}
			filter.TimeStart = &t
		}
		if *until != "" {
			t, err := time.Parse(time.RFC3339, *until)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: invalid -until: %v\n", err)
				os.Exit(1)
			}
			filter.TimeEnd = &t
		}
		return filter
	}
}

// openReader parses the positional log-file argument and opens a
// filtered reader over it.
func openReader(fs *flag.FlagSet, build func() log.Filter) *log.Reader {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}

	reader, err := log.NewFilteredReader(fs.Arg(0), build())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return reader
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	build := filterFlags(fs)
	fs.Parse(args)

	reader := openReader(fs, build)
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		line := fmt.Sprintf("%s %-7s %-12s %s",
			event.Timestamp.Format(time.RFC3339), event.Category, event.Subject, event.Action)
		if event.Detail != "" {
			line += " " + event.Detail
		}
		fmt.Println(line)
	}
}

// exportedEvent is the JSONL shape of one event.
type exportedEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Instance  string    `json:"instance,omitempty"`
	Category  string    `json:"category"`
	Subject   string    `json:"subject"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	build := filterFlags(fs)
	fs.Parse(args)

	reader := openReader(fs, build)
	defer reader.Close()

	enc := json.NewEncoder(os.Stdout)
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		enc.Encode(exportedEvent{
			Timestamp: event.Timestamp,
			Instance:  event.Instance,
			Category:  event.Category,
			Subject:   event.Subject,
			Action:    event.Action,
			Detail:    event.Detail,
		})
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	build := filterFlags(fs)
	fs.Parse(args)

	reader := openReader(fs, build)
	defer reader.Close()

	var total int
	var first, last time.Time
	bySubject := map[string]int{}
	byAction := map[string]int{}

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		total++
		if first.IsZero() || event.Timestamp.Before(first) {
			first = event.Timestamp
		}
		if event.Timestamp.After(last) {
			last = event.Timestamp
		}
		bySubject[event.Subject]++
		byAction[event.Action]++
	}

	fmt.Printf("Events: %d\n", total)
	if total > 0 {
		fmt.Printf("Span:   %s .. %s\n",
			first.Format(time.RFC3339), last.Format(time.RFC3339))
	}
	printCounts("By subject:", bySubject)
	printCounts("By action:", byAction)
}

// printCounts prints a count table sorted by descending count.
func printCounts(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	fmt.Println(title)
	for _, k := range keys {
		fmt.Printf("  %6d  %s\n", counts[k], k)
	}
}
