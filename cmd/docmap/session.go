package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lindstrom-j/docmap/document"
	"github.com/lindstrom-j/docmap/docstore"
)

var (
	sessionTitle   string
	sessionSpeaker string
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage an event's session agenda",
}

var sessionAddCmd = &cobra.Command{
	Use:   "add <event-id>",
	Short: "Append a session to the agenda",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionAdd,
}

var sessionListCmd = &cobra.Command{
	Use:   "list <event-id>",
	Short: "List the agenda in order",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionList,
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>",
	Short: "Drop a session by its composite identifier",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionRm,
}

func init() {
	sessionAddCmd.Flags().StringVar(&sessionTitle, "title", "", "session title (required)")
	sessionAddCmd.Flags().StringVar(&sessionSpeaker, "speaker", "", "speaker name")
	_ = sessionAddCmd.MarkFlagRequired("title")

	sessionCmd.AddCommand(sessionAddCmd)
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionRmCmd)
}

func runSessionAdd(cmd *cobra.Command, args []string) error {
	coll, closeStore, err := openEvents(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	event, err := coll.LoadByID(cmd.Context(), args[0], document.FindOptions{})
	if err != nil {
		return fmt.Errorf("load event %s: %w", args[0], err)
	}

	data := docstore.Payload{"title": sessionTitle}
	if sessionSpeaker != "" {
		data["speaker"] = sessionSpeaker
	}
	proxy, err := sessionContainer.Create(cmd.Context(), event, data, document.CreateOptions{})
	if err != nil {
		return fmt.Errorf("add session: %w", err)
	}

	id, err := proxy.ID()
	if err != nil {
		return fmt.Errorf("session identifier: %w", err)
	}
	if flagJSON {
		return printJSON(proxy.Data())
	}
	fmt.Printf("Added session: %s\n", id)
	return nil
}

func runSessionList(cmd *cobra.Command, args []string) error {
	coll, closeStore, err := openEvents(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	event, err := coll.LoadByID(cmd.Context(), args[0], document.FindOptions{})
	if err != nil {
		return fmt.Errorf("load event %s: %w", args[0], err)
	}
	sessions, err := sessionContainer.List(event)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	if flagJSON {
		payloads := make([]docstore.Payload, len(sessions))
		for i, s := range sessions {
			payloads[i] = s.Data()
		}
		return printJSON(payloads)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tID\tTITLE\tSPEAKER")
	for i, s := range sessions {
		id, err := s.ID()
		if err != nil {
			return fmt.Errorf("session identifier: %w", err)
		}
		title, _ := s.Get("title")
		speaker, _ := s.Get("speaker")
		fmt.Fprintf(w, "%d\t%s\t%v\t%v\n", i+1, id, title, speaker)
	}
	return w.Flush()
}

func runSessionRm(cmd *cobra.Command, args []string) error {
	coll, closeStore, err := openEvents(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	session, err := coll.LoadProxyByID(cmd.Context(), args[0], sessionContainer)
	if err != nil {
		return fmt.Errorf("load session %s: %w", args[0], err)
	}
	if err := session.Subdoc().Delete(cmd.Context(), document.DeleteOptions{}); err != nil {
		return fmt.Errorf("drop session %s: %w", args[0], err)
	}
	fmt.Printf("Dropped session: %s\n", args[0])
	return nil
}
