package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"lockbox/internal/cryptox"
	"lockbox/internal/shared"
	"lockbox/internal/vault"
)

func (a *App) printError(err error) {
	fmt.Fprintln(a.out, "Error:", err)
}

// promptNewPassword asks for a password twice and reports its strength.
func (a *App) promptNewPassword() ([]byte, error) {
	pw, err := GetPassword("Enter new master password: ", a.out)
	if err != nil {
		return nil, err
	}
	confirm, err := GetPassword("Repeat master password: ", a.out)
	if err != nil {
		shared.WipeByteArray(pw)
		return nil, err
	}
	defer shared.WipeByteArray(confirm)

	if !bytes.Equal(pw, confirm) {
		shared.WipeByteArray(pw)
		return nil, errors.New("passwords do not match")
	}

	score, label := cryptox.StrengthScore(string(pw))
	fmt.Fprintf(a.out, "Password strength: %s (%d/4)\n", label, score)
	return pw, nil
}

func (a *App) create(ctx context.Context, args []string) {
	force := len(args) > 0 && args[0] == "force"

	pw, err := a.promptNewPassword()
	if err != nil {
		a.printError(err)
		return
	}
	defer shared.WipeByteArray(pw)

	if err := a.manager.CreateVault(ctx, pw, force); err != nil {
		if errors.Is(err, vault.ErrVaultAlreadyExists) {
			fmt.Fprintln(a.out, "A vault already exists. Use 'create force' to re-initialize (this destroys all entries).")
			return
		}
		a.printError(err)
		return
	}
	fmt.Fprintln(a.out, "Vault created and unlocked.")
}

func (a *App) unlock(ctx context.Context) {
	pw, err := GetPassword("Enter master password: ", a.out)
	if err != nil {
		a.printError(err)
		return
	}
	defer shared.WipeByteArray(pw)

	if err := a.manager.Unlock(ctx, pw); err != nil {
		a.printError(err)
		return
	}
	fmt.Fprintln(a.out, "Vault unlocked.")
}

func (a *App) changePassword(ctx context.Context) {
	if !a.manager.Unlocked() {
		a.printError(vault.ErrVaultLocked)
		return
	}

	pw, err := a.promptNewPassword()
	if err != nil {
		a.printError(err)
		return
	}
	defer shared.WipeByteArray(pw)

	if err := a.manager.ChangeMasterPassword(ctx, pw); err != nil {
		a.printError(err)
		return
	}
	fmt.Fprintln(a.out, "Master password changed.")
}

func (a *App) add(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: add login|card|note")
		return
	}

	var draft vault.Draft
	var err error

	switch vault.EntryType(args[0]) {
	case vault.EntryTypeLogin:
		draft, err = a.inputLogin()
	case vault.EntryTypeCard:
		draft, err = a.inputCard()
	case vault.EntryTypeNote:
		draft, err = a.inputNote()
	default:
		fmt.Fprintln(a.out, "Usage: add login|card|note")
		return
	}
	if err != nil {
		a.printError(err)
		return
	}

	entry, err := a.manager.AddEntry(ctx, draft)
	if err != nil {
		a.printError(err)
		return
	}
	fmt.Fprintf(a.out, "Added %s %q (%s)\n", entry.Type, entry.Title, entry.ID)
}

func (a *App) inputLogin() (vault.Draft, error) {
	draft := vault.Draft{Type: vault.EntryTypeLogin}

	var err error
	if draft.Title, err = GetSimpleText(a.reader, "Enter title", a.out); err != nil {
		return draft, err
	}
	if draft.URL, err = GetSimpleText(a.reader, "Enter URL", a.out); err != nil {
		return draft, err
	}
	if draft.Username, err = GetSimpleText(a.reader, "Enter username", a.out); err != nil {
		return draft, err
	}
	if draft.Password, err = GetSimpleText(a.reader, "Enter password (empty to generate)", a.out); err != nil {
		return draft, err
	}
	if draft.Password == "" {
		generated, err := cryptox.GeneratePassword(16, cryptox.CharsetLower|cryptox.CharsetUpper|cryptox.CharsetDigits|cryptox.CharsetSymbols)
		if err != nil {
			return draft, err
		}
		draft.Password = generated
		fmt.Fprintln(a.out, "Generated password:", generated)
	}
	if draft.Notes, err = GetSimpleText(a.reader, "Enter notes", a.out); err != nil {
		return draft, err
	}
	return draft, nil
}

func (a *App) inputCard() (vault.Draft, error) {
	draft := vault.Draft{Type: vault.EntryTypeCard}

	var err error
	if draft.Title, err = GetSimpleText(a.reader, "Enter title", a.out); err != nil {
		return draft, err
	}
	if draft.CardHolder, err = GetSimpleText(a.reader, "Enter card holder", a.out); err != nil {
		return draft, err
	}
	if draft.CardNumber, err = GetSimpleText(a.reader, "Enter card number", a.out); err != nil {
		return draft, err
	}
	if draft.CardExpiry, err = GetSimpleText(a.reader, "Enter expiry (MM/YY)", a.out); err != nil {
		return draft, err
	}
	if draft.CardCVV, err = GetSimpleText(a.reader, "Enter CVV", a.out); err != nil {
		return draft, err
	}
	if draft.Notes, err = GetSimpleText(a.reader, "Enter notes", a.out); err != nil {
		return draft, err
	}
	return draft, nil
}

func (a *App) inputNote() (vault.Draft, error) {
	draft := vault.Draft{Type: vault.EntryTypeNote}

	var err error
	if draft.Title, err = GetSimpleText(a.reader, "Enter title", a.out); err != nil {
		return draft, err
	}
	if draft.NoteContent, err = GetMultiline(a.reader, "Enter note text", a.out); err != nil {
		return draft, err
	}
	return draft, nil
}

func parseCategory(args []string) (vault.Category, error) {
	if len(args) == 0 {
		return vault.CategoryAll, nil
	}
	c := vault.Category(args[0])
	switch c {
	case vault.CategoryAll, vault.CategoryFavorites, vault.CategoryLogin, vault.CategoryCard, vault.CategoryNote:
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", args[0])
}

func (a *App) list(args []string) {
	category, err := parseCategory(args)
	if err != nil {
		a.printError(err)
		return
	}

	entries, err := a.manager.List(category)
	if err != nil {
		a.printError(err)
		return
	}
	a.printEntries(entries)
}

func (a *App) search(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: search <query>")
		return
	}

	entries, err := a.manager.Search(vault.CategoryAll, strings.Join(args, " "))
	if err != nil {
		a.printError(err)
		return
	}
	a.printEntries(entries)
}

func (a *App) printEntries(entries []vault.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No entries.")
		return
	}
	for _, e := range entries {
		marker := " "
		if e.Favorite {
			marker = "*"
		}
		fmt.Fprintf(a.out, "%s %-5s  %-30s  %s\n", marker, e.Type, e.Title, e.ID)
	}
}

func (a *App) show(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: show <id>")
		return
	}

	e, err := a.manager.GetEntry(args[0])
	if err != nil {
		a.printError(err)
		return
	}

	fmt.Fprintf(a.out, "Title:    %s\n", e.Title)
	fmt.Fprintf(a.out, "Type:     %s\n", e.Type)
	fmt.Fprintf(a.out, "Favorite: %v\n", e.Favorite)

	switch e.Type {
	case vault.EntryTypeLogin:
		fmt.Fprintf(a.out, "URL:      %s\n", e.URL)
		fmt.Fprintf(a.out, "Username: %s\n", e.Username)
		fmt.Fprintf(a.out, "Password: %s\n", e.Password)
		fmt.Fprintf(a.out, "Notes:    %s\n", e.Notes)
	case vault.EntryTypeCard:
		fmt.Fprintf(a.out, "Holder:   %s\n", e.CardHolder)
		fmt.Fprintf(a.out, "Number:   %s\n", e.CardNumber)
		fmt.Fprintf(a.out, "Expiry:   %s\n", e.CardExpiry)
		fmt.Fprintf(a.out, "CVV:      %s\n", e.CardCVV)
		fmt.Fprintf(a.out, "Notes:    %s\n", e.Notes)
	case vault.EntryTypeNote:
		fmt.Fprintf(a.out, "Note:\n%s\n", e.NoteContent)
	}
	fmt.Fprintf(a.out, "Modified: %s\n", e.ModifiedAt.Local().Format("2006-01-02 15:04:05"))
}

// edit prompts for replacement values; an empty answer keeps the current one.
func (a *App) edit(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: edit <id>")
		return
	}

	e, err := a.manager.GetEntry(args[0])
	if err != nil {
		a.printError(err)
		return
	}

	var patch vault.Patch
	field := func(dst **string, prompt, current string) error {
		answer, err := GetSimpleText(a.reader, fmt.Sprintf("%s [%s] (empty to keep)", prompt, current), a.out)
		if err != nil {
			return err
		}
		if answer != "" {
			*dst = &answer
		}
		return nil
	}

	if err := field(&patch.Title, "Title", e.Title); err != nil {
		a.printError(err)
		return
	}

	switch e.Type {
	case vault.EntryTypeLogin:
		err = firstErr(
			field(&patch.URL, "URL", e.URL),
			field(&patch.Username, "Username", e.Username),
			field(&patch.Password, "Password", "hidden"),
			field(&patch.Notes, "Notes", e.Notes),
		)
	case vault.EntryTypeCard:
		err = firstErr(
			field(&patch.CardHolder, "Holder", e.CardHolder),
			field(&patch.CardNumber, "Number", e.CardNumber),
			field(&patch.CardExpiry, "Expiry", e.CardExpiry),
			field(&patch.CardCVV, "CVV", "hidden"),
			field(&patch.Notes, "Notes", e.Notes),
		)
	case vault.EntryTypeNote:
		err = field(&patch.NoteContent, "Note text", "current")
	}
	if err != nil {
		a.printError(err)
		return
	}

	if _, err := a.manager.UpdateEntry(ctx, e.ID, patch); err != nil {
		a.printError(err)
		return
	}
	fmt.Fprintln(a.out, "Entry updated.")
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *App) delete(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: delete <id>")
		return
	}
	if err := a.manager.DeleteEntry(ctx, args[0]); err != nil {
		a.printError(err)
		return
	}
	fmt.Fprintln(a.out, "Entry deleted.")
}

func (a *App) toggleFavorite(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: fav <id>")
		return
	}

	e, err := a.manager.GetEntry(args[0])
	if err != nil {
		a.printError(err)
		return
	}

	favorite := !e.Favorite
	if _, err := a.manager.UpdateEntry(ctx, e.ID, vault.Patch{Favorite: &favorite}); err != nil {
		a.printError(err)
		return
	}
	if favorite {
		fmt.Fprintf(a.out, "%q marked as favorite.\n", e.Title)
	} else {
		fmt.Fprintf(a.out, "%q removed from favorites.\n", e.Title)
	}
}

func (a *App) generate(args []string) {
	length := 16
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintln(a.out, "Usage: gen [length]")
			return
		}
		length = n
	}

	password, err := cryptox.GeneratePassword(length,
		cryptox.CharsetLower|cryptox.CharsetUpper|cryptox.CharsetDigits|cryptox.CharsetSymbols)
	if err != nil {
		a.printError(err)
		return
	}

	score, label := cryptox.StrengthScore(password)
	fmt.Fprintln(a.out, password)
	fmt.Fprintf(a.out, "Strength: %s (%d/4)\n", label, score)
}

func (a *App) export(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: export <path>")
		return
	}
	if err := a.manager.ExportRecord(ctx, args[0]); err != nil {
		a.printError(err)
		return
	}
	fmt.Fprintln(a.out, "Vault record exported to", args[0])
}

func (a *App) importRecord(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: import <path>")
		return
	}

	pw, err := GetPassword("Enter master password of the imported vault: ", a.out)
	if err != nil {
		a.printError(err)
		return
	}
	defer shared.WipeByteArray(pw)

	if err := a.manager.ImportRecord(ctx, args[0], pw); err != nil {
		a.printError(err)
		return
	}
	fmt.Fprintln(a.out, "Vault record imported and unlocked.")
}
