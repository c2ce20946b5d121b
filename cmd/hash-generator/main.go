// Command hash-generator hashes a password with the server's bcrypt settings.
// With -username and -email it prints an INSERT for an ADMIN account, since
// that role cannot be granted through the API.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/coursehub/coursehub-api/internal/domain"
	"github.com/coursehub/coursehub-api/internal/service/auth"
)

func main() {
	cost := flag.Int("cost", auth.DefaultBcryptCost, "bcrypt cost")
	username := flag.String("username", "", "admin username; prints an INSERT statement when set")
	email := flag.String("email", "", "admin email")
	flag.Parse()

	if err := run(os.Stdin, os.Stdout, *cost, *username, *email); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run reads one password line from in and writes the hash, or the admin
// INSERT statement, to out.
func run(in io.Reader, out io.Writer, cost int, username, email string) error {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if err := domain.ValidatePassword(password); err != nil {
		return err
	}

	hashed, err := auth.NewBcryptHasher(cost).Hash(context.Background(), password)
	if err != nil {
		return err
	}

	if username == "" {
		_, err = fmt.Fprintln(out, hashed)
		return err
	}

	admin := &domain.User{
		Username:       strings.TrimSpace(username),
		Email:          strings.TrimSpace(email),
		HashedPassword: hashed,
		Role:           domain.RoleAdmin,
	}
	if err := admin.Validate(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out,
		"INSERT INTO users (username, email, full_name, hashed_password, role, balance, created_at, updated_at)\n"+
			"VALUES ('%s', '%s', '', '%s', '%s', 0, NOW(), NOW());\n",
		sqlQuote(admin.Username), sqlQuote(admin.Email), hashed, admin.Role)
	return err
}

func sqlQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
