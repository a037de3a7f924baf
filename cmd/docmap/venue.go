package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lindstrom-j/docmap/document"
	"github.com/lindstrom-j/docmap/docstore"
)

var (
	venueCity string
	venueHall string
)

var venueCmd = &cobra.Command{
	Use:   "venue",
	Short: "Manage an event's venue",
}

var venueSetCmd = &cobra.Command{
	Use:   "set <event-id>",
	Short: "Set the venue, replacing any existing one",
	Args:  cobra.ExactArgs(1),
	RunE:  runVenueSet,
}

var venueShowCmd = &cobra.Command{
	Use:   "show <event-id>",
	Short: "Show the venue",
	Args:  cobra.ExactArgs(1),
	RunE:  runVenueShow,
}

func init() {
	venueSetCmd.Flags().StringVar(&venueCity, "city", "", "venue city (required)")
	venueSetCmd.Flags().StringVar(&venueHall, "hall", "", "hall or room")
	_ = venueSetCmd.MarkFlagRequired("city")

	venueCmd.AddCommand(venueSetCmd)
	venueCmd.AddCommand(venueShowCmd)
}

func runVenueSet(cmd *cobra.Command, args []string) error {
	coll, closeStore, err := openEvents(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	event, err := coll.LoadByID(cmd.Context(), args[0], document.FindOptions{})
	if err != nil {
		return fmt.Errorf("load event %s: %w", args[0], err)
	}

	data := docstore.Payload{"city": venueCity}
	if venueHall != "" {
		data["hall"] = venueHall
	}
	proxy, err := venueContainer.Create(cmd.Context(), event, data, document.CreateOptions{})
	if err != nil {
		return fmt.Errorf("set venue: %w", err)
	}

	id, err := proxy.ID()
	if err != nil {
		return fmt.Errorf("venue identifier: %w", err)
	}
	if flagJSON {
		return printJSON(proxy.Data())
	}
	fmt.Printf("Set venue: %s\n", id)
	return nil
}

func runVenueShow(cmd *cobra.Command, args []string) error {
	coll, closeStore, err := openEvents(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	event, err := coll.LoadByID(cmd.Context(), args[0], document.FindOptions{})
	if err != nil {
		return fmt.Errorf("load event %s: %w", args[0], err)
	}
	proxy, err := venueContainer.Get(event, "")
	if err != nil {
		return fmt.Errorf("event %s has no venue", args[0])
	}

	if flagJSON {
		return printJSON(proxy.Data())
	}
	city, _ := proxy.Get("city")
	hall, _ := proxy.Get("hall")
	fmt.Printf("City: %v\n", city)
	if hall != nil {
		fmt.Printf("Hall: %v\n", hall)
	}
	return nil
}
