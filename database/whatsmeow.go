package database

import (
	"context"
	"log"

	"go.mau.fi/whatsmeow/store/sqlstore"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// Container menyimpan device store whatsmeow (credential material milik
// protocol client, bukan milik gateway).
var Container *sqlstore.Container

func InitWhatsmeow(dbURL string) {
	dbLog := waLog.Stdout("Database", "INFO", true)

	container, err := sqlstore.New(context.Background(), "postgres", dbURL, dbLog)
	if err != nil {
		log.Fatal("Failed to connect whatsmeow DB:", err)
	}
	Container = container
	log.Println("Whatsmeow device store connected successfully")
}
