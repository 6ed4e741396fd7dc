// Command adminpass hashes an admin password with bcrypt and writes it
// to the password file the server reads at startup.
package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

const passwordFile = "admin_password.txt"

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <password>\n", os.Args[0])
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(os.Args[1]), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash password:", err)
		os.Exit(1)
	}
	if err := os.WriteFile(passwordFile, append(hash, '\n'), 0o600); err != nil {
		fmt.Fprintln(os.Stderr, "write", passwordFile+":", err)
		os.Exit(1)
	}
	fmt.Println("admin password hash written to", passwordFile)
}
