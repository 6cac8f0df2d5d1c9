package main

import (
	"github.com/trezcool/darasa/storage/database"
)

var migrateRunFunc = database.Run // mockable

func (cli *commandLine) migrate(args []string) error {
	command := "up"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}
	return migrateRunFunc(cli.db, command, args...)
}
