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
	ticketHolder string
	ticketVIP    bool
)

var ticketCmd = &cobra.Command{
	Use:   "ticket",
	Short: "Manage an event's tickets",
}

var ticketAddCmd = &cobra.Command{
	Use:   "add <event-id>",
	Short: "Issue a ticket",
	Long: `Add issues a ticket for the event and prints the ticket's composite
identifier. That identifier addresses the individual ticket in later
commands.

Example:
  docmap ticket add 0123...cdef --holder "Ada Lovelace" --vip`,
	Args: cobra.ExactArgs(1),
	RunE: runTicketAdd,
}

var ticketListCmd = &cobra.Command{
	Use:   "list <event-id>",
	Short: "List an event's tickets",
	Args:  cobra.ExactArgs(1),
	RunE:  runTicketList,
}

var ticketRmCmd = &cobra.Command{
	Use:   "rm <ticket-id>",
	Short: "Revoke a ticket by its composite identifier",
	Args:  cobra.ExactArgs(1),
	RunE:  runTicketRm,
}

func init() {
	ticketAddCmd.Flags().StringVar(&ticketHolder, "holder", "", "ticket holder (required)")
	ticketAddCmd.Flags().BoolVar(&ticketVIP, "vip", false, "issue a VIP ticket")
	_ = ticketAddCmd.MarkFlagRequired("holder")

	ticketCmd.AddCommand(ticketAddCmd)
	ticketCmd.AddCommand(ticketListCmd)
	ticketCmd.AddCommand(ticketRmCmd)
}

func runTicketAdd(cmd *cobra.Command, args []string) error {
	coll, closeStore, err := openEvents(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	event, err := coll.LoadByID(cmd.Context(), args[0], document.FindOptions{})
	if err != nil {
		return fmt.Errorf("load event %s: %w", args[0], err)
	}

	data := docstore.Payload{"holder": ticketHolder}
	var proxy *document.Proxy
	if ticketVIP {
		obj, err := ticketContainer.CreateObject(cmd.Context(), event, "vip", data, document.CreateOptions{})
		if err != nil {
			return fmt.Errorf("issue ticket: %w", err)
		}
		proxy = obj.Subdoc()
	} else {
		proxy, err = ticketContainer.Create(cmd.Context(), event, data, document.CreateOptions{})
		if err != nil {
			return fmt.Errorf("issue ticket: %w", err)
		}
	}

	id, err := proxy.ID()
	if err != nil {
		return fmt.Errorf("ticket identifier: %w", err)
	}
	if flagJSON {
		return printJSON(proxy.Data())
	}
	fmt.Printf("Issued ticket: %s\n", id)
	return nil
}

func runTicketList(cmd *cobra.Command, args []string) error {
	coll, closeStore, err := openEvents(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	event, err := coll.LoadByID(cmd.Context(), args[0], document.FindOptions{})
	if err != nil {
		return fmt.Errorf("load event %s: %w", args[0], err)
	}
	tickets, err := ticketContainer.ListObjects(event)
	if err != nil {
		return fmt.Errorf("list tickets: %w", err)
	}

	if flagJSON {
		payloads := make([]docstore.Payload, len(tickets))
		for i, tk := range tickets {
			payloads[i] = tk.Subdoc().Data()
		}
		return printJSON(payloads)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tHOLDER\tKIND")
	for _, tk := range tickets {
		proxy := tk.Subdoc()
		id, err := proxy.ID()
		if err != nil {
			return fmt.Errorf("ticket identifier: %w", err)
		}
		holder, _ := proxy.Get("holder")
		kind := "standard"
		if _, ok := tk.(*vipTicket); ok {
			kind = "vip"
		}
		fmt.Fprintf(w, "%s\t%v\t%s\n", id, holder, kind)
	}
	return w.Flush()
}

func runTicketRm(cmd *cobra.Command, args []string) error {
	coll, closeStore, err := openEvents(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	ticket, err := coll.LoadProxyByID(cmd.Context(), args[0], ticketContainer)
	if err != nil {
		return fmt.Errorf("load ticket %s: %w", args[0], err)
	}
	if err := ticket.Subdoc().Delete(cmd.Context(), document.DeleteOptions{}); err != nil {
		return fmt.Errorf("revoke ticket %s: %w", args[0], err)
	}
	fmt.Printf("Revoked ticket: %s\n", args[0])
	return nil
}
