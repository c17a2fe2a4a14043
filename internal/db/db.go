package db

import (
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/mythchat/mythchat/internal/chat"
	"github.com/mythchat/mythchat/internal/models"
	"github.com/mythchat/mythchat/internal/mythology"
)

func Connect(dsn string) *gorm.DB {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	if err := gdb.AutoMigrate(
		&models.User{},
		&mythology.Mythology{},
		&mythology.God{},
		&chat.Session{},
		&chat.MigrationJob{},
	); err != nil {
		log.Fatalf("db automigrate: %v", err)
	}

	return gdb
}
