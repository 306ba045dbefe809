package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/threadclient"
)

var deleteConfirmed bool

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in with email and password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}

		client := newClient()
		user, err := client.Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		if err := saveToken(client.Token()); err != nil {
			return err
		}

		fmt.Printf("Signed in as %s (%s)\n", user.Username, user.Email)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <email> <username>",
	Short: "Create an account and sign in",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := promptPassword("Password (min 8 characters): ")
		if err != nil {
			return err
		}

		client := newClient()
		user, err := client.Register(cmd.Context(), args[0], args[1], password)
		if err != nil {
			return err
		}
		if err := saveToken(client.Token()); err != nil {
			return err
		}

		fmt.Printf("Account created. Signed in as %s\n", user.Username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := tokenPath()
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	},
}

var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "Read and manage the comment thread",
}

var commentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the thread, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl := threadclient.NewController(newClient())
		if err := ctl.Refresh(cmd.Context()); err != nil {
			return err
		}

		state := ctl.State()
		if len(state.Comments) == 0 {
			fmt.Println("No comments yet.")
			return nil
		}
		for _, c := range state.Comments {
			printComment(c)
		}
		return nil
	},
}

var commentsPostCmd = &cobra.Command{
	Use:   "post <content>",
	Short: "Post a comment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl := threadclient.NewController(newClient())
		if err := ctl.PostComment(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Comment posted.")
		return nil
	},
}

var commentsEditCmd = &cobra.Command{
	Use:   "edit <comment-id> <content>",
	Short: "Edit one of your comments",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl := threadclient.NewController(newClient())
		if err := ctl.EditComment(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Println("Comment updated.")
		return nil
	},
}

var commentsDeleteCmd = &cobra.Command{
	Use:   "delete <comment-id>",
	Short: "Delete one of your comments and its replies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl := threadclient.NewController(newClient())
		err := ctl.DeleteComment(cmd.Context(), args[0], deleteConfirmed)
		if errors.Is(err, threadclient.ErrNotConfirmed) {
			return fmt.Errorf("deleting removes the comment and all its replies; re-run with --yes to confirm")
		}
		if err != nil {
			return err
		}
		fmt.Println("Comment deleted.")
		return nil
	},
}

var replyCmd = &cobra.Command{
	Use:   "reply",
	Short: "Manage replies to comments",
}

var replyPostCmd = &cobra.Command{
	Use:   "post <comment-id> <content>",
	Short: "Reply to a comment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl := threadclient.NewController(newClient())
		if err := ctl.PostReply(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Println("Reply posted.")
		return nil
	},
}

var replyEditCmd = &cobra.Command{
	Use:   "edit <comment-id> <reply-id> <content>",
	Short: "Edit one of your replies",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl := threadclient.NewController(newClient())
		if err := ctl.EditReply(cmd.Context(), args[0], args[1], args[2]); err != nil {
			return err
		}
		fmt.Println("Reply updated.")
		return nil
	},
}

var replyDeleteCmd = &cobra.Command{
	Use:   "delete <comment-id> <reply-id>",
	Short: "Delete one of your replies",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl := threadclient.NewController(newClient())
		err := ctl.DeleteReply(cmd.Context(), args[0], args[1], deleteConfirmed)
		if errors.Is(err, threadclient.ErrNotConfirmed) {
			return fmt.Errorf("re-run with --yes to confirm deletion")
		}
		if err != nil {
			return err
		}
		fmt.Println("Reply deleted.")
		return nil
	},
}

func init() {
	commentsDeleteCmd.Flags().BoolVar(&deleteConfirmed, "yes", false, "confirm the deletion")
	replyDeleteCmd.Flags().BoolVar(&deleteConfirmed, "yes", false, "confirm the deletion")

	commentsCmd.AddCommand(commentsListCmd, commentsPostCmd, commentsEditCmd, commentsDeleteCmd)
	replyCmd.AddCommand(replyPostCmd, replyEditCmd, replyDeleteCmd)
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, commentsCmd, replyCmd)
}

// promptPassword reads a password without echoing when stdin is a
// terminal; in a pipe it falls back to a plain line read.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		data, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(data), nil
	}

	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return line, nil
}

func printComment(c model.Comment) {
	fmt.Printf("[%s] %s — %s\n", c.ID, c.Username, c.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Printf("  %s\n", strings.ReplaceAll(c.Content, "\n", "\n  "))
	for _, r := range c.Replies {
		fmt.Printf("    [%s] %s — %s\n", r.ID, r.Username, r.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Printf("      %s\n", strings.ReplaceAll(r.Content, "\n", "\n      "))
	}
	fmt.Println()
}
