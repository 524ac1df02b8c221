package service

import (
	"context"
	"sync/atomic"

	"github.com/deskline/service-desk/internal/domain"
	"github.com/deskline/service-desk/internal/repository"
	"github.com/deskline/service-desk/internal/repository/memory"
	"github.com/deskline/service-desk/internal/workflow"
)

func repositoryFilterActive(active bool) repository.UserFilter {
	return repository.UserFilter{Active: &active}
}

func workflowDefinitionWithoutTrigger() workflow.Definition {
	return workflow.Definition{Nodes: []workflow.Node{{ID: "a", Type: "action"}}}
}

// pausingTickets holds the next armed GetByID after its read until release is
// closed, so a second operation can complete in between.
type pausingTickets struct {
	*memory.Tickets
	armed   atomic.Bool
	read    chan struct{}
	release chan struct{}
}

func newPausingTickets() *pausingTickets {
	return &pausingTickets{
		Tickets: memory.NewTickets(),
		read:    make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (p *pausingTickets) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := p.Tickets.GetByID(ctx, id)
	if p.armed.CompareAndSwap(true, false) {
		close(p.read)
		<-p.release
	}
	return ticket, err
}
