package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"secureshare/internal/client/session"
)

func (a *App) getStatus() string {
	switch a.session.State() {
	case session.StateAuthenticated:
		if identity := a.session.Identity(); identity != nil {
			return fmt.Sprintf("(%s)", identity.Email)
		}
		return "(signed in)"
	case session.StatePendingVerification:
		return "(awaiting code)"
	case session.StateExpired:
		return "(expired)"
	default:
		return ""
	}
}

func (a *App) Root(ctx context.Context) {
	fmt.Println("Welcome to SecureShare CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("share %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Println("Available commands: (l)ist, upload, download, delete, share, resolve, users, rmuser, logout, exit")
			} else {
				fmt.Println("Available commands: register, login, verify, resolve, exit")
			}

		case "register":
			a.Register(ctx)
		case "login":
			a.Login(ctx)
		case "verify":
			a.Verify(ctx)
		case "l", "list":
			a.list(ctx)
		case "upload":
			a.upload(ctx)
		case "download":
			a.download(ctx)
		case "delete":
			a.delete(ctx)
		case "share":
			a.share(ctx)
		case "resolve":
			a.resolve(ctx)
		case "users":
			a.users(ctx)
		case "rmuser":
			a.removeUser(ctx)
		case "logout":
			a.Logout(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}
