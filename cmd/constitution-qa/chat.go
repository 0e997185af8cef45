// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/constitution-qa/internal/history"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Browse and organize saved conversations",
	Long: `Chat manages conversations saved with "ask --save" or "ask --chat".
Use subcommands to list chats, replay one, delete one, or file chats into
folders.`,
}

var chatListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved chats, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.NewStore(historyConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		chats, err := store.ListChats(context.Background())
		if err != nil {
			return err
		}
		if len(chats) == 0 {
			fmt.Println("No saved chats.")
			return nil
		}

		fmt.Fprintf(os.Stdout, "%-6s  %-12s  %-19s  %s\n", "ID", "Folder", "Created", "Title")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 70))
		for _, c := range chats {
			fmt.Fprintf(os.Stdout, "%-6d  %-12s  %-19s  %s\n",
				c.ID, c.Folder, c.CreatedAt.Format("2006-01-02 15:04:05"), c.Title)
		}
		return nil
	},
}

var chatShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Replay one chat",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid chat id %q", args[0])
		}

		store, err := history.NewStore(historyConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		chat, err := store.GetChat(context.Background(), id)
		if err != nil {
			return err
		}

		fmt.Printf("Chat %d: %s\n", chat.ID, chat.Title)
		for _, m := range chat.Messages {
			fmt.Printf("\n[%s]\n%s\n", m.Role, m.Content)
		}
		return nil
	},
}

var chatDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a chat and its messages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid chat id %q", args[0])
		}

		store, err := history.NewStore(historyConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.DeleteChat(context.Background(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted chat %d\n", id)
		return nil
	},
}

var chatMoveCmd = &cobra.Command{
	Use:   "move [id]",
	Short: "File a chat under a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid chat id %q", args[0])
		}
		folder, _ := cmd.Flags().GetString("folder")

		store, err := history.NewStore(historyConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.MoveChat(context.Background(), id, folder); err != nil {
			return err
		}
		if folder == "" {
			fmt.Printf("Removed chat %d from its folder\n", id)
		} else {
			fmt.Printf("Moved chat %d to %q\n", id, folder)
		}
		return nil
	},
}

func init() {
	chatMoveCmd.Flags().String("folder", "", "target folder name (empty removes the chat from its folder)")

	chatCmd.AddCommand(chatListCmd, chatShowCmd, chatDeleteCmd, chatMoveCmd)
	rootCmd.AddCommand(chatCmd)
}
