// Command hash-generator prints bcrypt hashes for seeding user records.
// Passwords come from the arguments, or one per line on stdin.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/taskdesk/taskdesk-api/internal/domain"
	"github.com/taskdesk/taskdesk-api/internal/service/auth"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("hash-generator", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cost := fs.Int("cost", 10, "bcrypt cost")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	passwords := fs.Args()
	if len(passwords) == 0 {
		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				passwords = append(passwords, line)
			}
		}
		if err := scanner.Err(); err != nil {
			fmt.Fprintf(stderr, "Error reading stdin: %v\n", err)
			return 1
		}
	}
	if len(passwords) == 0 {
		fmt.Fprintln(stderr, "no passwords given")
		return 2
	}

	hasher := auth.NewBcrypt(*cost)
	status := 0
	for i, password := range passwords {
		if n := len(password); n < domain.MinPasswordLength || n > domain.MaxPasswordBytes {
			fmt.Fprintf(stderr, "password %d: must be %d to %d bytes\n",
				i+1, domain.MinPasswordLength, domain.MaxPasswordBytes)
			status = 1
			continue
		}
		hash, err := hasher.Hash(password)
		if err != nil {
			fmt.Fprintf(stderr, "password %d: %v\n", i+1, err)
			status = 1
			continue
		}
		fmt.Fprintln(stdout, hash)
	}
	return status
}
