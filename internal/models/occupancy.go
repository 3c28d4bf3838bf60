package models

// OccupancyState is the behaviour attached to a flat's occupancy status. The
// implementations are stateless and shared.
type OccupancyState interface {
	Status() OccupancyStatus
	ChangeStatus(f *Flat)
}

type unoccupiedState struct{}

func (unoccupiedState) Status() OccupancyStatus { return OccupancyUnoccupied }
func (unoccupiedState) ChangeStatus(f *Flat)    { f.Status = OccupancyOccupied }

type occupiedState struct{}

func (occupiedState) Status() OccupancyStatus { return OccupancyOccupied }
func (occupiedState) ChangeStatus(f *Flat)    { f.Status = OccupancyUnoccupied }

var (
	Unoccupied OccupancyState = unoccupiedState{}
	Occupied   OccupancyState = occupiedState{}
)

// OccupancyStateFor maps a stored status to its state object. Anything other
// than OCCUPIED is treated as UNOCCUPIED.
func OccupancyStateFor(s OccupancyStatus) OccupancyState {
	if s == OccupancyOccupied {
		return Occupied
	}
	return Unoccupied
}
