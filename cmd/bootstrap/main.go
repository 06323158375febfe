// Command bootstrap migrates the schema and creates the default admin
// account. Intended as a one-off deploy step; the same work is reachable at
// runtime through POST /api/setup/init.
package main

import (
	"context"
	"log"
	"os"

	"voxadmin/internal/config"
	"voxadmin/internal/db"
	"voxadmin/internal/repository"
	"voxadmin/internal/service"
)

func main() {
	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN, cfg.TableNamespace)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	store := repository.NewStoreWithDB(gormDB)
	setup := service.NewSetupService(gormDB, store.Users, store.Assignments)

	created, tempPassword, err := setup.Init(context.Background(), os.Getenv("ADMIN_PASSWORD"))
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	if created {
		log.Printf("default admin %s created", service.DefaultAdminEmail)
		if tempPassword != "" {
			log.Printf("generated admin password: %s (change it on first login)", tempPassword)
		}
	} else {
		log.Printf("default admin %s already present, nothing to do", service.DefaultAdminEmail)
	}
}
