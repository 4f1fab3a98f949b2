package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"geminios/internal/mirror"
)

// chatCmd runs a single chat turn against the kernel assistant.
var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send one message to the kernel assistant",
	Long: `Runs one chat turn: your message is appended to the synchronized
transcript, the kernel assistant replies, and any tool call it emits
(app launch, wifi toggle, notification clear) is applied locally.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	rt, err := bootRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	message := strings.Join(args, " ")
	logger.Info("chat turn", zap.String("uid", rt.sess.Identity.UID))

	history, err := rt.assistant.Send(ctx, message)
	if err != nil {
		return err
	}

	// Print the turns this call produced (assistant reply + action log).
	for _, msg := range tailAfterUser(history, message) {
		fmt.Println(msg.Text)
	}
	return nil
}

// tailAfterUser returns the messages following the last occurrence of the
// user's own message.
func tailAfterUser(history []mirror.ChatMessage, userText string) []mirror.ChatMessage {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == mirror.RoleUser && history[i].Text == userText {
			return history[i+1:]
		}
	}
	return nil
}
