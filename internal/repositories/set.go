package repositories

// Set bundles the repositories one backend provides.
type Set struct {
	Communities CommunityRepository
	Occupants   OccupantRepository
	Payments    PaymentRepository
	Clients     ClientRepository
}

func NewPostgresSet(db DB) Set {
	return Set{
		Communities: NewCommunityRepository(db),
		Occupants:   NewOccupantRepository(db),
		Payments:    NewPaymentRepository(db),
		Clients:     NewClientRepository(db),
	}
}

func NewMemorySet(s *MemoryStore) Set {
	return Set{
		Communities: NewMemoryCommunityRepository(s),
		Occupants:   NewMemoryOccupantRepository(s),
		Payments:    NewMemoryPaymentRepository(s),
		Clients:     NewMemoryClientRepository(s),
	}
}
