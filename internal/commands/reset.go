package commands

import (
	"netkb/internal/database"
	"netkb/internal/output"
)

// Reset empties every knowledgebase table. Requires --yes; there is no
// undo.
func Reset(args []string) int {
	confirmed := false
	for _, a := range args {
		if a == "--yes" || a == "-y" {
			confirmed = true
		}
	}
	if !confirmed {
		output.Println("reset deletes every host, credential, group, share, and relation.")
		output.Println("re-run with --yes to confirm.")
		return 2
	}

	db, _, err := openKB()
	if err != nil {
		output.Printf("error: %s\n", err)
		return 1
	}
	defer database.Close(db)

	if err := database.Reset(db); err != nil {
		output.Printf("reset failed: %s\n", err)
		return 1
	}
	output.Println(output.Colorize("success", "knowledgebase reset"))
	return 0
}
