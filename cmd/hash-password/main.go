// Command hash-password prints the bcrypt hash to use as ADMIN_PASSWORD_HASH.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"batchdesk/internal/auth"
	"batchdesk/internal/cli"
	applog "batchdesk/internal/log"
)

func main() {
	logger := cli.SetupLogger(applog.ComponentAuth)

	password := ""
	if len(os.Args) > 1 {
		password = os.Args[1]
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			cli.Fatal(logger, "Read password from stdin", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		cli.Fatal(logger, "Usage: hash-password <password> (or pipe it on stdin)", errors.New("empty password"))
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		cli.Fatal(logger, "Hash password", err)
	}
	fmt.Println(hash)
}
