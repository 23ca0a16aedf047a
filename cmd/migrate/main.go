// Command migrate upgrades a database file written by the desktop app to the
// bill/line schema. It is safe to run more than once.
package main

import (
	"context"
	"errors"
	"log"
	"os"

	"dmc-inventory/config"
	"dmc-inventory/migration"
	"dmc-inventory/store"
)

func main() {
	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	st, err := store.Open(cfg.Database, logger)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer st.Close()

	res, err := migration.Run(context.Background(), st, logger)
	switch {
	case errors.Is(err, migration.ErrNotNeeded):
		logger.Println("nothing to migrate")
		return
	case err != nil:
		logger.Fatalf("migration failed: %v", err)
	}
	logger.Printf("backup: %s", res.BackupPath)
	logger.Printf("items copied: %d, centers copied: %d", res.ItemsCopied, res.CentersCopied)
	v := res.Verification
	logger.Printf("incoming bills %d / lines %d", v.IncomingBills, v.IncomingLines)
	logger.Printf("donation bills %d / lines %d", v.DonationBills, v.DonationLines)
	logger.Printf("outgoing bills %d / lines %d", v.OutgoingBills, v.OutgoingLines)
}
