package main

import (
	"context"

	"github.com/lindstrom-j/docmap/document"
)

// The event model: one document per event, with the three container shapes
// each covering one region of the payload.
var (
	venueContainer = document.Container{Name: "venue", Kind: document.Single}

	ticketRegistry  = document.NewProxyRegistry()
	ticketContainer = document.Container{
		Name:     "tickets",
		Kind:     document.Keyed,
		Registry: ticketRegistry,
	}

	sessionContainer = document.Container{Name: "sessions", Kind: document.Ordered}

	eventConfig = document.Config{
		ObjectVersion: 1,
		Containers:    []document.Container{venueContainer, ticketContainer, sessionContainer},
	}
)

// vipTicket marks tickets sold with lounge access. Plain tickets stay bare
// proxies; only the subclass needs a type.
type vipTicket struct{ *document.Proxy }

func init() {
	if err := ticketRegistry.Register("vip", func(p *document.Proxy) document.ProxyObject {
		return &vipTicket{p}
	}); err != nil {
		panic(err)
	}
}

// openEvents opens the configured backend and wraps it in the event
// collection. The key separator is configurable but must stay fixed once
// identifiers have been handed out.
func openEvents(ctx context.Context) (*document.Collection, func(), error) {
	store, closeStore, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	config := eventConfig
	config.KeySeparator = cfg.GetString(cfgKeySeparator)
	return document.NewCollection(store, config), closeStore, nil
}
