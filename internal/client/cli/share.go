package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"secureshare/internal/client/models"
	"secureshare/internal/client/vault"
)

func (a *App) share(ctx context.Context) {
	id, err := getSimpleText(a.reader, "Enter file id to share", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err.Error())
		return
	}

	grantee, err := getSimpleText(a.reader, "Enter the recipient's user id", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err.Error())
		return
	}

	permText, err := getSimpleText(a.reader, "Permission (view or download)", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err.Error())
		return
	}
	perm, err := models.ParseGrantPermission(strings.ToLower(permText))
	if err != nil {
		fmt.Println("Error:", err.Error())
		return
	}

	choices := make([]string, len(vault.AllowedShareTTLs))
	for i, ttl := range vault.AllowedShareTTLs {
		choices[i] = formatTTL(ttl)
	}
	fmt.Println("Available durations:", strings.Join(choices, ", "))
	ttlText, err := getSimpleText(a.reader, "Expires after (seconds)", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err.Error())
		return
	}
	ttl, err := strconv.Atoi(ttlText)
	if err != nil {
		fmt.Println("Error: not a number:", ttlText)
		return
	}

	grant, err := a.vault.CreateGrant(ctx, id, grantee, perm, ttl)
	if err != nil {
		fmt.Println("Error:", err.Error())
		return
	}

	fmt.Printf("Share token: %s (expires %s)\n", grant.Token, grant.ExpiresAt.Format("2006-01-02 15:04"))
}

func (a *App) resolve(ctx context.Context) {
	token, err := getSimpleText(a.reader, "Enter share token", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err.Error())
		return
	}

	shared, err := a.vault.ResolveGrant(ctx, token)
	if err != nil {
		fmt.Println("Error:", err.Error())
		return
	}

	fmt.Printf("Shared file: %s (%d bytes, %s access)\n", shared.Record.Filename, shared.Record.Size, shared.Permission)

	if shared.Permission != models.GrantDownload {
		plaintext, err := a.vault.OpenShared(shared)
		if err != nil {
			fmt.Println("Error:", err.Error())
			return
		}
		fmt.Println("--- begin shared content ---")
		fmt.Println(string(plaintext))
		fmt.Println("--- end shared content ---")
		return
	}

	target, err := getSimpleText(a.reader, "Save as (empty keeps original name)", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err.Error())
		return
	}
	if target == "" {
		target = shared.Record.Filename
	}

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		fmt.Println("Error:", err.Error())
		return
	}
	defer out.Close()

	if err := a.vault.SaveShared(shared, out); err != nil {
		fmt.Println("Error:", err.Error())
		return
	}
	fmt.Println("Saved to", target)
}

func formatTTL(seconds int) string {
	switch {
	case seconds < 3600:
		return fmt.Sprintf("%dm=%d", seconds/60, seconds)
	default:
		return fmt.Sprintf("%dh=%d", seconds/3600, seconds)
	}
}
