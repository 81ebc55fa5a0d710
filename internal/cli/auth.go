package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/ssh/terminal"
)

func cmdLogin(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	addr := *email
	if addr == "" {
		var err error
		addr, err = prompt("Email: ")
		if err != nil {
			return err
		}
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	session, err := e.sessions.Login(ctx, addr, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	fmt.Printf("Logged in as %s <%s>\n", session.Name, session.Email)
	return nil
}

func cmdRegister(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	displayName := *name
	if displayName == "" {
		var err error
		displayName, err = prompt("Name: ")
		if err != nil {
			return err
		}
	}
	addr := *email
	if addr == "" {
		var err error
		addr, err = prompt("Email: ")
		if err != nil {
			return err
		}
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	session, err := e.sessions.Register(ctx, displayName, addr, password)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	fmt.Printf("Welcome, %s! You are now logged in.\n", session.Name)
	return nil
}

func cmdLogout(e *env) error {
	if e.sessions.Current() == nil {
		fmt.Println("Not logged in.")
		return nil
	}
	if err := e.sessions.Logout(); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

func cmdWhoami(e *env) error {
	session := e.sessions.Current()
	if session == nil {
		fmt.Println("Not logged in.")
		return nil
	}
	fmt.Printf("%s <%s> (since %s)\n", session.Name, session.Email, session.CreatedAt.Format("Jan 2, 2006"))
	return nil
}

func prompt(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	b, err := terminal.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
