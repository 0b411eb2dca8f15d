package main

import (
	"github.com/MorenaCaparros/plataformaAPA-sub001/storage/database"
)

func (cli *commandLine) migrate(args []string) error {
	return database.RunMigrations(cli.db, args[0], args[1:]...)
}
