package commands

import (
	"fmt"
	"strings"

	"netkb/internal/database"
	"netkb/internal/kbconfig"
	"netkb/internal/logger"
	"netkb/internal/output"
	"netkb/internal/recon"

	"gorm.io/gorm"
)

// openKB loads config, wires logging, and opens the knowledgebase.
func openKB() (*gorm.DB, kbconfig.Config, error) {
	cfg, err := kbconfig.Load()
	if err != nil {
		return nil, cfg, fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.Log)
	output.SetDebug(cfg.IsDebug())
	output.Debugf("config loaded from %s\n", kbconfig.ConfigPath())

	db, err := database.Open(cfg.Database, cfg.IsDebug())
	if err != nil {
		return nil, cfg, err
	}
	return db, cfg, nil
}

// Hosts prints hosts matching the optional filter term.
func Hosts(args []string) int {
	filter, domain := splitFilter(args)

	db, _, err := openKB()
	if err != nil {
		output.Printf("error: %s\n", err)
		return 1
	}
	defer database.Close(db)

	hosts, err := recon.New(db).GetHosts(filter, domain)
	if err != nil {
		output.Printf("error: %s\n", err)
		return 1
	}

	output.Println(output.Colorize("title", fmt.Sprintf("%-5s %-16s %-20s %-12s %-4s %s", "ID", "IP", "HOSTNAME", "DOMAIN", "DC", "OS")))
	for _, h := range hosts {
		output.Printf("%-5d %-16s %-20s %-12s %-4s %s\n", h.ID, h.IP, h.Hostname, h.Domain, flag(h.IsDC), h.OS)
	}
	output.Printf("%d host(s)\n", len(hosts))
	return 0
}

// Creds prints credentials matching the optional filter term.
func Creds(args []string) int {
	filter, credType := splitFilter(args)

	db, _, err := openKB()
	if err != nil {
		output.Printf("error: %s\n", err)
		return 1
	}
	defer database.Close(db)

	creds, err := recon.New(db).GetCredentials(filter, credType)
	if err != nil {
		output.Printf("error: %s\n", err)
		return 1
	}

	output.Println(output.Colorize("title", fmt.Sprintf("%-5s %-12s %-24s %-10s %s", "ID", "DOMAIN", "USERNAME", "TYPE", "SECRET")))
	for _, c := range creds {
		secretType := c.SecretType
		if secretType == "" {
			secretType = output.Colorize("dim", "(bare)")
		}
		output.Printf("%-5d %-12s %-24s %-10s %s\n", c.ID, c.Domain, c.Username, secretType, c.Secret)
	}
	output.Printf("%d credential(s)\n", len(creds))
	return 0
}

// Groups prints groups matching the optional filter term.
func Groups(args []string) int {
	filter, _ := splitFilter(args)

	db, _, err := openKB()
	if err != nil {
		output.Printf("error: %s\n", err)
		return 1
	}
	defer database.Close(db)

	groups, err := recon.New(db).GetGroups(filter)
	if err != nil {
		output.Printf("error: %s\n", err)
		return 1
	}

	output.Println(output.Colorize("title", fmt.Sprintf("%-5s %-12s %-32s %-8s %s", "ID", "DOMAIN", "NAME", "MEMBERS", "LAST QUERIED")))
	for _, g := range groups {
		members := "-"
		if g.ADMemberCount != nil {
			members = fmt.Sprintf("%d", *g.ADMemberCount)
		}
		queried := "-"
		if g.LastQueriedAt != nil {
			queried = g.LastQueriedAt.Format("2006-01-02 15:04")
		}
		output.Printf("%-5d %-12s %-32s %-8s %s\n", g.ID, g.Domain, g.Name, members, queried)
	}
	output.Printf("%d group(s)\n", len(groups))
	return 0
}

// Shares prints shares matching the optional filter term.
func Shares(args []string) int {
	filter, _ := splitFilter(args)

	db, _, err := openKB()
	if err != nil {
		output.Printf("error: %s\n", err)
		return 1
	}
	defer database.Close(db)

	shares, err := recon.New(db).GetShares(filter)
	if err != nil {
		output.Printf("error: %s\n", err)
		return 1
	}

	output.Println(output.Colorize("title", fmt.Sprintf("%-5s %-6s %-6s %-24s %-4s %-4s %s", "ID", "HOST", "CRED", "NAME", "R", "W", "REMARK")))
	for _, s := range shares {
		cred := "-"
		if s.CredentialID != nil {
			cred = fmt.Sprintf("%d", *s.CredentialID)
		}
		output.Printf("%-5d %-6d %-6s %-24s %-4s %-4s %s\n", s.ID, s.HostID, cred, s.Name, mark(s.Readable), mark(s.Writable), s.Remark)
	}
	output.Printf("%d share(s)\n", len(shares))
	return 0
}

// splitFilter interprets args as [filter] plus an optional second
// qualifier (domain for hosts, secret type for creds).
func splitFilter(args []string) (string, string) {
	filter, qualifier := "", ""
	if len(args) > 0 {
		filter = strings.TrimSpace(args[0])
	}
	if len(args) > 1 {
		qualifier = strings.TrimSpace(args[1])
	}
	return filter, qualifier
}

func flag(b *bool) string {
	if b == nil {
		return "?"
	}
	if *b {
		return "yes"
	}
	return "no"
}

func mark(b bool) string {
	if b {
		return "x"
	}
	return "-"
}
