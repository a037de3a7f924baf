package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lindstrom-j/docmap/document"
	"github.com/lindstrom-j/docmap/docstore"
)

var (
	eventName string
	eventCity string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new event",
	Long: `Add creates a new event document and prints its identifier.

Example:
  docmap add --name "GopherCon EU" --city berlin`,
	RunE: runAdd,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List events",
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show <event-id>",
	Short: "Show one event in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var rmCmd = &cobra.Command{
	Use:   "rm <event-id>",
	Short: "Delete an event and everything inside it",
	Args:  cobra.ExactArgs(1),
	RunE:  runRm,
}

func init() {
	addCmd.Flags().StringVar(&eventName, "name", "", "event name (required)")
	addCmd.Flags().StringVar(&eventCity, "city", "", "event city")
	_ = addCmd.MarkFlagRequired("name")

	listCmd.Flags().StringVar(&eventCity, "city", "", "only events in this city")
}

func runAdd(cmd *cobra.Command, args []string) error {
	coll, closeStore, err := openEvents(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	data := docstore.Payload{"name": eventName}
	if eventCity != "" {
		data["city"] = eventCity
	}
	event, err := coll.New(data)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	if err := event.Save(cmd.Context()); err != nil {
		return fmt.Errorf("save event: %w", err)
	}

	if flagJSON {
		return printJSON(event.Data())
	}
	fmt.Printf("Created event: %s\n", event.ID())
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	coll, closeStore, err := openEvents(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	filter := docstore.Filter{}
	if eventCity != "" {
		filter["city"] = eventCity
	}
	events, err := coll.Find(cmd.Context(), filter, document.FindOptions{})
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}

	if flagJSON {
		payloads := make([]docstore.Payload, len(events))
		for i, e := range events {
			payloads[i] = e.Data()
		}
		return printJSON(payloads)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCITY\tTICKETS\tSESSIONS")
	for _, e := range events {
		name, _ := e.Get("name")
		city, _ := e.Get("city")
		tickets, _ := ticketContainer.List(e)
		sessions, _ := sessionContainer.List(e)
		fmt.Fprintf(w, "%s\t%v\t%v\t%d\t%d\n", e.ID(), name, city, len(tickets), len(sessions))
	}
	return w.Flush()
}

func runShow(cmd *cobra.Command, args []string) error {
	coll, closeStore, err := openEvents(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	event, err := coll.LoadByID(cmd.Context(), args[0], document.FindOptions{})
	if err != nil {
		return fmt.Errorf("load event %s: %w", args[0], err)
	}
	return printJSON(event.Data())
}

func runRm(cmd *cobra.Command, args []string) error {
	coll, closeStore, err := openEvents(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	event, err := coll.LoadByID(cmd.Context(), args[0], document.FindOptions{})
	if err != nil {
		return fmt.Errorf("load event %s: %w", args[0], err)
	}
	if err := event.Delete(cmd.Context()); err != nil {
		return fmt.Errorf("delete event %s: %w", args[0], err)
	}
	fmt.Printf("Deleted event: %s\n", args[0])
	return nil
}

func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(output))
	return nil
}
