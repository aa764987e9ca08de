package cli

import (
	"context"
	"fmt"
	"os"
)

func (a *App) users(ctx context.Context) {
	users, err := a.client.ListUsers(ctx)
	if err != nil {
		fmt.Println("Error:", err.Error())
		return
	}
	for _, u := range users {
		fmt.Printf("%s  %-20s  %-30s  %s\n", u.ID, u.Name, u.Email, u.Role)
	}
}

func (a *App) removeUser(ctx context.Context) {
	id, err := getSimpleText(a.reader, "Enter user id to remove", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err.Error())
		return
	}

	if err := a.client.DeleteUser(ctx, id); err != nil {
		fmt.Println("Error:", err.Error())
		return
	}
	fmt.Println("User removed.")
}
