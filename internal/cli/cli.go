package cli

import (
	"fmt"
	"strings"

	"netkb/internal/commands"
	"netkb/internal/output"
	"netkb/internal/version"
)

func Run(args []string) int {
	if len(args) < 2 {
		output.Println(usage())
		return 2
	}

	switch args[1] {
	case "-h", "--help", "help":
		output.Println(usage())
		return 0
	case "-v", "--version", "version":
		output.Printf("netkb %s (%s)\n", version.Version, version.Build)
		return 0
	case "hosts":
		return commands.Hosts(args[2:])
	case "creds":
		return commands.Creds(args[2:])
	case "groups":
		return commands.Groups(args[2:])
	case "shares":
		return commands.Shares(args[2:])
	case "config":
		return commands.Config(args[2:])
	case "export":
		return commands.Export(args[2:])
	case "reset":
		return commands.Reset(args[2:])
	default:
		output.Printf("unknown command: %s\n\n", args[1])
		output.Println(usage())
		return 2
	}
}

func usage() string {
	b := &strings.Builder{}
	fmt.Fprintln(b, "netkb - network-assessment knowledgebase")
	fmt.Fprintln(b, "")
	fmt.Fprintln(b, "Usage:")
	fmt.Fprintln(b, "  netkb <command> [args]")
	fmt.Fprintln(b, "")
	fmt.Fprintln(b, "Commands:")
	fmt.Fprintln(b, "  hosts  [filter] [domain]   list hosts (filter: id, 'dc', or ip/hostname substring)")
	fmt.Fprintln(b, "  creds  [filter] [type]     list credentials (filter: id or username substring)")
	fmt.Fprintln(b, "  groups [filter]            list groups (filter: id or name substring)")
	fmt.Fprintln(b, "  shares [filter]            list shares (filter: id or name substring)")
	fmt.Fprintln(b, "  config [init]              show the active config, or write it to disk")
	fmt.Fprintln(b, "  export [dir]               dump the knowledgebase to a JSON snapshot")
	fmt.Fprintln(b, "  reset --yes                empty every table")
	fmt.Fprintln(b, "")
	fmt.Fprintln(b, "Examples:")
	fmt.Fprintln(b, "  netkb hosts dc corp          # domain controllers in CORP")
	fmt.Fprintln(b, "  netkb creds admin hash       # hash creds for usernames containing 'admin'")
	fmt.Fprintln(b, "  netkb export /tmp/findings")
	return b.String()
}
