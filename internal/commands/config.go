package commands

import (
	"netkb/internal/kbconfig"
	"netkb/internal/output"
)

// Config prints the active configuration. "config init" writes it to
// the config file so defaults can be edited in place.
func Config(args []string) int {
	cfg, err := kbconfig.Load()
	if err != nil {
		output.Printf("error: %s\n", err)
		return 1
	}

	if len(args) > 0 && args[0] == "init" {
		if err := kbconfig.Save(cfg); err != nil {
			output.Printf("failed to write config: %s\n", err)
			return 1
		}
		output.Printf("%s %s\n", output.Colorize("success", "config written:"), kbconfig.ConfigPath())
		return 0
	}

	output.Println(output.Colorize("title", "netkb configuration"))
	output.Printf("  config file:  %s\n", kbconfig.ConfigPath())
	output.Printf("  db driver:    %s\n", cfg.Database.Driver)
	output.Printf("  sqlite path:  %s\n", cfg.Database.SQLitePath)
	output.Printf("  log level:    %s\n", cfg.Log.Level)
	output.Printf("  log mode:     %s\n", cfg.Log.Mode)
	output.Printf("  export dir:   %s\n", cfg.Export.Dir)
	return 0
}
