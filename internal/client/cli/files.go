package cli

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

func (a *App) list(ctx context.Context) {
	if err := a.vault.Refresh(ctx); err != nil {
		fmt.Println("Error:", err.Error())
		return
	}

	files := a.vault.Files()
	if len(files) == 0 {
		fmt.Println("No files yet.")
		return
	}
	for _, f := range files {
		fmt.Printf("%s  %-30s  %8d bytes  %s\n", f.ID, f.Filename, f.Size, f.UploadDate.Format("2006-01-02 15:04"))
	}
}

func (a *App) upload(ctx context.Context) {
	path, err := getSimpleText(a.reader, "Enter path of file to upload", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err.Error())
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println("Error:", err.Error())
		return
	}

	name := filepath.Base(path)
	record, err := a.vault.ProtectAndUpload(ctx, name, detectMediaType(name, data), data, func(pct int) {
		fmt.Printf("\rUploading... %3d%%", pct)
	})
	fmt.Println()
	if err != nil {
		fmt.Println("Error:", err.Error())
		return
	}

	fmt.Printf("Uploaded %s (id %s)\n", record.Filename, record.ID)
}

func (a *App) download(ctx context.Context) {
	id, err := getSimpleText(a.reader, "Enter file id to download", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err.Error())
		return
	}

	plaintext, env, err := a.vault.FetchAndDecrypt(ctx, id)
	if err != nil {
		fmt.Println("Error:", err.Error())
		return
	}

	target, err := getSimpleText(a.reader, "Save as (empty keeps original name)", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err.Error())
		return
	}
	if target == "" {
		target = env.Name
	}

	if err := os.WriteFile(target, plaintext, 0o600); err != nil {
		fmt.Println("Error:", err.Error())
		return
	}
	fmt.Printf("Saved %d bytes to %s\n", len(plaintext), target)
}

func (a *App) delete(ctx context.Context) {
	id, err := getSimpleText(a.reader, "Enter file id to delete", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err.Error())
		return
	}

	if err := a.vault.DeleteFile(ctx, id); err != nil {
		fmt.Println("Error:", err.Error())
		return
	}
	fmt.Println("Deleted.")
}

// detectMediaType prefers the file extension and falls back to content
// sniffing.
func detectMediaType(name string, data []byte) string {
	if mt := mime.TypeByExtension(filepath.Ext(name)); mt != "" {
		return mt
	}
	return http.DetectContentType(data)
}
