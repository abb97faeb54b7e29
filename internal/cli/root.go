package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// Root runs the command loop until EOF or an explicit exit. Every accepted
// command line counts as user activity for the auto-lock timer.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to lockbox (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Fprintf(a.out, "lockbox (%s)> ", a.getStatus())
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]
		a.manager.Touch()

		switch cmd {
		case "help":
			a.help()
		case "create":
			a.create(ctx, args)
		case "unlock":
			a.unlock(ctx)
		case "lock":
			a.manager.Lock()
		case "passwd":
			a.changePassword(ctx)
		case "add":
			a.add(ctx, args)
		case "l", "list":
			a.list(args)
		case "search":
			a.search(args)
		case "show":
			a.show(args)
		case "edit":
			a.edit(ctx, args)
		case "delete":
			a.delete(ctx, args)
		case "fav":
			a.toggleFavorite(ctx, args)
		case "gen":
			a.generate(args)
		case "export":
			a.export(ctx, args)
		case "import":
			a.importRecord(ctx, args)
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}
}

func (a *App) help() {
	if a.manager.Unlocked() {
		fmt.Fprintln(a.out, "Available commands: (l)ist [all|favorites|login|card|note], search <query>,")
		fmt.Fprintln(a.out, "  add login|card|note, show <id>, edit <id>, delete <id>, fav <id>,")
		fmt.Fprintln(a.out, "  gen [length], passwd, export <path>, import <path>, lock, exit")
	} else {
		fmt.Fprintln(a.out, "Available commands: create, unlock, import <path>, gen [length], exit")
	}
}
