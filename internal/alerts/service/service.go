// Package service implements the alert engine: batch ingestion, the
// find-or-create reconciler, the acknowledge/resolve lifecycle, and
// notification fan-out.
package service

import (
	"shelfsense_backend/internal/alerts/domain"
	"shelfsense_backend/internal/events"
	"shelfsense_backend/platform/logger"
)

// Service is the alert engine. Collaborators are injected via setters from
// the composition root; only the store and policy are mandatory.
type Service struct {
	store  Store
	policy domain.Policy
	log    *logger.Logger

	catalog     CatalogLookup
	assignments AssignmentLookup
	directory   StaffDirectory
	dispatcher  Dispatcher
	bus         events.Bus
}

// New creates the alert engine.
func New(store Store, policy domain.Policy, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		policy: policy,
		log:    log,
	}
}

// SetCatalog wires the catalog lookup collaborator.
func (s *Service) SetCatalog(catalog CatalogLookup) {
	s.catalog = catalog
}

// SetAssignments wires the staff assignment lookup collaborator.
func (s *Service) SetAssignments(assignments AssignmentLookup) {
	s.assignments = assignments
}

// SetDirectory wires the staff directory collaborator.
func (s *Service) SetDirectory(directory StaffDirectory) {
	s.directory = directory
}

// SetDispatcher wires the notification dispatcher collaborator.
func (s *Service) SetDispatcher(dispatcher Dispatcher) {
	s.dispatcher = dispatcher
}

// SetEventBus wires the domain event bus.
func (s *Service) SetEventBus(bus events.Bus) {
	s.bus = bus
}

// Policy returns the engine's active policy.
func (s *Service) Policy() domain.Policy {
	return s.policy
}
