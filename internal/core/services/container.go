package services

import (
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/events"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider, sink events.Sink) *portssvc.ServiceContainer {
	if sink == nil {
		sink = events.NoopSink{}
	}
	container := &portssvc.ServiceContainer{}

	container.Account = NewAccountService(repos.AccountRepo, repos.JournalRepo)
	container.Journal = NewJournalService(repos.JournalRepo, repos.AccountRepo)
	container.Posting = NewPostingService(repos.JournalRepo, repos.AccountRepo, WithEventSink(sink))
	container.Ledger = NewLedgerService(repos.AccountRepo, repos.JournalRepo)
	container.Submission = NewEntrySourceAdapter(
		repos.AccountRepo,
		repos.JournalRepo,
		container.Journal,
		container.Posting,
		WithSubmissionSink(sink),
	)

	return container
}
