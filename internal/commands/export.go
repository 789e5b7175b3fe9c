package commands

import (
	"netkb/internal/database"
	"netkb/internal/output"
)

// Export dumps the knowledgebase to a JSON snapshot file.
func Export(args []string) int {
	db, cfg, err := openKB()
	if err != nil {
		output.Printf("error: %s\n", err)
		return 1
	}
	defer database.Close(db)

	dir := cfg.Export.Dir
	if len(args) > 0 && args[0] != "" {
		dir = args[0]
	}

	path, err := database.Export(db, dir)
	if err != nil {
		output.Printf("export failed: %s\n", err)
		return 1
	}
	output.Printf("%s %s\n", output.Colorize("success", "exported:"), path)
	return 0
}
